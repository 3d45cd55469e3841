package types

import tea "github.com/charmbracelet/bubbletea"

// Mode represents an input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAttach
	ModeConfirmSubmit
)

// Action represents a command the model should execute
type Action interface {
	Type() string
}

// Context provides read-only access to form state needed for input handling
type Context interface {
	LineCount() int
	CurrentLine() int
	AttachmentCount() int
	Submitted() bool
}

// ModeHandler handles input for a specific mode
type ModeHandler interface {
	// HandleKey processes a key message and returns actions and whether to consume the event
	HandleKey(msg tea.KeyMsg, ctx Context) ([]Action, bool)

	// Enter is called when entering this mode
	Enter(ctx Context) []Action

	// Exit is called when leaving this mode
	Exit(ctx Context) []Action

	// Name returns the mode name for display
	Name() string
}

// Prompter is implemented by text modes that label their input line
type Prompter interface {
	Prompt() string
}
