package types

// Focus actions
type FocusAction struct {
	Delta int // +1 next field, -1 previous field
}

func (a FocusAction) Type() string { return "focus" }

// Line table actions
type NavigateAction struct {
	Direction string // "up", "down", "home", "end"
}

func (a NavigateAction) Type() string { return "navigate" }

type QuantityAction struct {
	Delta int
}

func (a QuantityAction) Type() string { return "quantity" }

type RemoveLineAction struct{}

func (a RemoveLineAction) Type() string { return "remove_line" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

type SubmitTextAction struct {
	Text string
	Mode Mode // Which mode submitted the text
}

func (a SubmitTextAction) Type() string { return "submit_text" }

type CancelTextAction struct{}

func (a CancelTextAction) Type() string { return "cancel_text" }

// Document actions
type RequestSubmitAction struct{}

func (a RequestSubmitAction) Type() string { return "request_submit" }

type ConfirmSubmitAction struct{}

func (a ConfirmSubmitAction) Type() string { return "confirm_submit" }

type RemoveAttachmentAction struct{}

func (a RemoveAttachmentAction) Type() string { return "remove_attachment" }

type NewDocumentAction struct{}

func (a NewDocumentAction) Type() string { return "new_document" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type QuitAction struct {
	Force bool // true for Ctrl+C, false for 'q'
}

func (a QuitAction) Type() string { return "quit" }
