package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LineView is one document line, already formatted for display
type LineView struct {
	Description string
	Unit        string
	Quantity    string
	UnitPrice   string
	Discount    string
	Amount      string
}

// LinesRenderer renders the item table of a document
type LinesRenderer struct {
	styles *Styles
}

// NewLinesRenderer creates a new lines renderer
func NewLinesRenderer(styles *Styles) *LinesRenderer {
	return &LinesRenderer{styles: styles}
}

var lineColumns = []struct {
	title string
	width int
	right bool
}{
	{"#", 3, true},
	{"Item", 32, false},
	{"Unit", 6, false},
	{"Qty", 8, true},
	{"Price", 14, true},
	{"Disc%", 6, true},
	{"Amount", 16, true},
}

// Render draws the table. The cursor row is highlighted only when the table
// has focus
func (r *LinesRenderer) Render(lines []LineView, cursor int, focused bool) string {
	var b strings.Builder
	b.WriteString(r.styles.TableHeader.Render(r.row(func(i int) string { return lineColumns[i].title })))
	b.WriteString("\n")

	if len(lines) == 0 {
		b.WriteString(r.styles.Dim.Render("  No items yet. Pick one in the Item field."))
		return b.String()
	}

	for n, l := range lines {
		cells := []string{fmt.Sprintf("%d", n+1), l.Description, l.Unit, l.Quantity, l.UnitPrice, l.Discount, l.Amount}
		text := r.row(func(i int) string { return cells[i] })
		if focused && n == cursor {
			text = r.styles.SelectionBg.Render(text)
		}
		b.WriteString(text)
		if n < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r *LinesRenderer) row(cell func(int) string) string {
	parts := make([]string, len(lineColumns))
	for i, col := range lineColumns {
		text := truncate(cell(i), col.width)
		style := lipgloss.NewStyle().Width(col.width)
		if col.right {
			style = style.Align(lipgloss.Right)
		}
		parts[i] = style.Render(text)
	}
	return strings.Join(parts, " ")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 || len(runes) <= 1 {
		return string(runes[:1])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
