package modes

import (
	"erpick/internal/ui/input/types"
	tea "github.com/charmbracelet/bubbletea"
)

type NormalMode struct{}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true

	case tea.KeyTab:
		return []types.Action{types.FocusAction{Delta: 1}}, true

	case tea.KeyShiftTab:
		return []types.Action{types.FocusAction{Delta: -1}}, true

	case tea.KeyUp:
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case tea.KeyDown:
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case tea.KeyHome:
		return []types.Action{types.NavigateAction{Direction: "home"}}, true

	case tea.KeyEnd:
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	case tea.KeyCtrlS:
		if ctx.Submitted() {
			return nil, true
		}
		return []types.Action{types.RequestSubmitAction{}}, true

	case tea.KeyDelete:
		if ctx.LineCount() == 0 {
			return nil, true
		}
		return []types.Action{types.RemoveLineAction{}}, true
	}

	// Handle string keys
	switch msg.String() {
	case "j":
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case "k":
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case "g":
		return []types.Action{types.NavigateAction{Direction: "home"}}, true

	case "G":
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	case "+", "=":
		if ctx.LineCount() == 0 || ctx.Submitted() {
			return nil, true
		}
		return []types.Action{types.QuantityAction{Delta: 1}}, true

	case "-":
		if ctx.LineCount() == 0 || ctx.Submitted() {
			return nil, true
		}
		return []types.Action{types.QuantityAction{Delta: -1}}, true

	case "x":
		if ctx.LineCount() == 0 || ctx.Submitted() {
			return nil, true
		}
		return []types.Action{types.RemoveLineAction{}}, true

	case "a":
		if ctx.Submitted() {
			return nil, true
		}
		return []types.Action{types.ChangeModeAction{Mode: types.ModeAttach}}, true

	case "D":
		if ctx.AttachmentCount() == 0 || ctx.Submitted() {
			return nil, true
		}
		return []types.Action{types.RemoveAttachmentAction{}}, true

	case "n":
		if !ctx.Submitted() {
			return nil, false
		}
		return []types.Action{types.NewDocumentAction{}}, true

	case "?":
		return []types.Action{types.ToggleHelpAction{}}, true

	case "q":
		return []types.Action{types.QuitAction{Force: false}}, true
	}

	return nil, false
}
