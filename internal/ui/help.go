package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"erpick/internal/domain"
)

// formKeys lists the form bindings for the inline help line. Matching is
// done by the input modes; these only describe them
type formKeys struct {
	Focus    key.Binding
	Open     key.Binding
	Lines    key.Binding
	Quantity key.Binding
	Remove   key.Binding
	Attach   key.Binding
	Detach   key.Binding
	Submit   key.Binding
	New      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newFormKeys() formKeys {
	return formKeys{
		Focus:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Open:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open list")),
		Lines:    key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("↑/↓", "move")),
		Quantity: key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "quantity")),
		Remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove line")),
		Attach:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "attach file")),
		Detach:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "drop attachment")),
		Submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new document")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Open, k.Submit, k.Attach, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Open, k.Lines},
		{k.Quantity, k.Remove},
		{k.Attach, k.Detach},
		{k.Submit, k.New, k.Help, k.Quit},
	}
}

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

// RenderHelpContent generates the full help text shown in the pager
func (r *HelpRenderer) RenderHelpContent(kind domain.DocumentKind) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(14)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	noteStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))

	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Fields", [][2]string{
			{"Tab/Shift+Tab", "Next/previous field"},
			{"Enter, Space", "Open the focused list"},
		}},
		{"Open list", [][2]string{
			{"type", "Search the backend (waits until you stop typing)"},
			{"↑/↓", "Move the cursor"},
			{"PgUp/PgDn", "Page up/down"},
			{"Home/End", "First/last row"},
			{"Enter", "Pick the row under the cursor"},
			{"Esc", "Close without changing the value"},
		}},
		{"Lines", [][2]string{
			{"↑/↓, j/k", "Move between lines"},
			{"g/G", "First/last line"},
			{"+ / -", "Change quantity"},
			{"x, Del", "Remove line"},
		}},
		{"Document", [][2]string{
			{"a", "Attach a file"},
			{"D", "Remove the last attachment"},
			{"Ctrl+S", "Submit"},
			{"n", "Start a new document after submitting"},
		}},
		{"Other", [][2]string{
			{"?", "Show this help"},
			{"q", "Quit"},
		}},
	}

	var help strings.Builder
	help.WriteString(titleStyle.Render("erpick Help: " + kind.Title()))
	help.WriteString("\n")
	for _, s := range sections {
		help.WriteString(sectionStyle.Render(s.title))
		help.WriteString("\n")
		for _, k := range s.keys {
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(k[0]), descStyle.Render(k[1])))
		}
	}
	help.WriteString("\n")
	help.WriteString(noteStyle.Render(fmt.Sprintf(
		"  Picking an item adds a line. \"%s\" and Warehouse are required to submit.",
		kind.PartnerLabel())))
	return help.String()
}

// HelpOps handles help operations
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps(program *tea.Program) *HelpOps {
	return &HelpOps{
		program: program,
	}
}

// ShowHelpInPager shows help content using ov pager
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// Give ov time to leave the alternate screen before taking it back
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(helpContent))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
