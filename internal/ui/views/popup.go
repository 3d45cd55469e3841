package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderPopupOverlay greys out the main content and centres the popup over
// it. Without a known size the popup is appended below the content
func (pr *PopupRenderer) RenderPopupOverlay(mainContent, popupContent string, height, width int) string {
	styledPopup := pr.styles.Popup.Render(popupContent)
	if width <= 0 || height <= 0 {
		return mainContent + "\n" + styledPopup
	}

	base := strings.Split(Desaturate(mainContent), "\n")
	for len(base) < height {
		base = append(base, "")
	}
	base = base[:height]

	popupLines := strings.Split(styledPopup, "\n")
	top := (height - len(popupLines)) / 2
	if top < 0 {
		top = 0
	}

	for i, line := range popupLines {
		row := top + i
		if row >= len(base) {
			break
		}
		base[row] = lipgloss.PlaceHorizontal(width, lipgloss.Center, line,
			lipgloss.WithWhitespaceChars(" "))
	}
	return strings.Join(base, "\n")
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes color and style codes
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// Desaturate strips ANSI color/style codes and recolors text dim gray
func Desaturate(s string) string {
	lines := strings.Split(s, "\n")
	grey := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	for i, line := range lines {
		lines[i] = grey.Render(StripANSI(line))
	}
	return strings.Join(lines, "\n")
}
