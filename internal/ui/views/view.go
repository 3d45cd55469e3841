package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TotalRow is one label/amount pair of the totals block
type TotalRow struct {
	Label string
	Value string
	Grand bool
}

// ViewState contains all the state needed for rendering the document form
type ViewState struct {
	Width         int
	Height        int
	Title         string
	Status        string
	DocumentID    string
	Fields        []string
	FieldHint     string
	Lines         []LineView
	CurrentLine   int
	LinesFocused  bool
	Totals        []TotalRow
	TotalsError   string
	Attachments   []string
	InputPrompt   string
	TextInput     string
	ConfirmText   string
	Busy          string
	StatusMessage string
	StatusIsError bool
	HelpText      string
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	linesRender *LinesRenderer
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer(styles *Styles) *Renderer {
	if styles == nil {
		styles = NewStyles()
	}
	return &Renderer{
		styles:      styles,
		linesRender: NewLinesRenderer(styles),
		popupRender: NewPopupRenderer(styles),
	}
}

// Styles returns the renderer's style set
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderTitle(state))
	content.WriteString("\n")

	for _, f := range state.Fields {
		content.WriteString(f)
		content.WriteString("\n")
	}
	if state.FieldHint != "" {
		content.WriteString(r.styles.StatusWarning.Render(state.FieldHint))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	content.WriteString(r.linesRender.Render(state.Lines, state.CurrentLine, state.LinesFocused))
	content.WriteString("\n\n")

	content.WriteString(r.renderTotals(state))

	if len(state.Attachments) > 0 {
		content.WriteString("\n\n")
		content.WriteString(r.styles.TableHeader.Render("Attachments"))
		for _, a := range state.Attachments {
			content.WriteString("\n  📎 " + a)
		}
	}

	if state.InputPrompt != "" {
		content.WriteString("\n\n")
		content.WriteString(r.styles.Highlight.Render(state.InputPrompt))
		content.WriteString(state.TextInput)
	}

	if state.Busy != "" {
		content.WriteString("\n")
		content.WriteString(r.styles.Status.Render(r.styles.StatusLoading.Render(state.Busy)))
	} else if state.StatusMessage != "" {
		style := r.styles.StatusSuccess
		if state.StatusIsError {
			style = r.styles.StatusError
		}
		content.WriteString("\n")
		content.WriteString(r.styles.Status.Render(style.Render(state.StatusMessage)))
	}

	if state.HelpText != "" {
		content.WriteString("\n\n")
		content.WriteString(r.styles.Help.Render(state.HelpText))
	}

	main := r.styles.Main.Render(content.String())
	if state.ConfirmText != "" {
		return r.popupRender.RenderPopupOverlay(main, r.styles.Confirm.Render(state.ConfirmText), state.Height, state.Width)
	}
	return main
}

func (r *Renderer) renderTitle(state ViewState) string {
	logo := r.styles.Title.Render("erpick · " + state.Title)
	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(StatusColor(state.Status))).
		Render("[" + state.Status + "]")
	if state.DocumentID != "" {
		badge += r.styles.Dim.Render(" #" + state.DocumentID)
	}

	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	padding := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(badge)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + badge
}

func (r *Renderer) renderTotals(state ViewState) string {
	if state.TotalsError != "" {
		return r.styles.StatusError.Render(state.TotalsError)
	}
	rows := make([]string, 0, len(state.Totals))
	for _, t := range state.Totals {
		label := lipgloss.NewStyle().Width(20).Render(t.Label)
		value := lipgloss.NewStyle().Width(18).Align(lipgloss.Right).Render(t.Value)
		line := fmt.Sprintf("%s%s", label, value)
		if t.Grand {
			line = r.styles.Total.Render(line)
		}
		rows = append(rows, line)
	}
	block := strings.Join(rows, "\n")
	return lipgloss.NewStyle().MarginLeft(40).Render(block)
}
