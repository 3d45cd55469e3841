package modes

import (
	"erpick/internal/ui/input/types"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmMode asks before the document is sent to the backend
type ConfirmMode struct{}

func NewConfirmMode() *ConfirmMode {
	return &ConfirmMode{}
}

func (m *ConfirmMode) Name() string {
	return "confirm-submit"
}

func (m *ConfirmMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *ConfirmMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *ConfirmMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "esc", "n", "N":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
	case "y", "Y", "enter":
		return []types.Action{
			types.ConfirmSubmitAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	}

	// Everything else is swallowed while the dialog is up
	return nil, true
}
