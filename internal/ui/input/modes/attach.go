package modes

import (
	"strings"

	"erpick/internal/ui/input/types"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// AttachMode asks for the path of a file to upload. Keys it does not claim
// are fed to the shared text input by the handler
type AttachMode struct {
	textInput *textinput.Model
}

func NewAttachMode(ti *textinput.Model) *AttachMode {
	return &AttachMode{textInput: ti}
}

func (m *AttachMode) Name() string {
	return "attach"
}

// Prompt is shown before the text input
func (m *AttachMode) Prompt() string {
	return "Attach file: "
}

func (m *AttachMode) Enter(ctx types.Context) []types.Action {
	if m.textInput != nil {
		m.textInput.Reset()
		m.textInput.Placeholder = "~/scans/invoice.pdf"
		m.textInput.Prompt = "" // the view renders Prompt()
		m.textInput.Focus()
	}
	return nil
}

func (m *AttachMode) Exit(ctx types.Context) []types.Action {
	if m.textInput != nil {
		m.textInput.Blur()
		m.textInput.Reset()
	}
	return nil
}

func (m *AttachMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "ctrl+u":
		if m.textInput != nil {
			m.textInput.SetValue("")
		}
		return nil, true
	case "esc":
		return []types.Action{
			types.CancelTextAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case "enter":
		path := ""
		if m.textInput != nil {
			path = strings.TrimSpace(m.textInput.Value())
		}
		if path == "" {
			return []types.Action{
				types.CancelTextAction{},
				types.ChangeModeAction{Mode: types.ModeNormal},
			}, true
		}
		return []types.Action{
			types.SubmitTextAction{Text: path, Mode: types.ModeAttach},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	}
	return nil, false
}
