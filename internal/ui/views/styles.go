package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Confirm       lipgloss.Style
	Dim           lipgloss.Style
	Label         lipgloss.Style
	FocusedLabel  lipgloss.Style
	Value         lipgloss.Style
	Placeholder   lipgloss.Style
	Dropdown      lipgloss.Style
	Row           lipgloss.Style
	CursorRow     lipgloss.Style
	Input         lipgloss.Style
	Status        lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Scroll        lipgloss.Style
	Highlight     lipgloss.Style
	TableHeader   lipgloss.Style
	Total         lipgloss.Style
	Popup         lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
	SelectionBg   lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Confirm:      lipgloss.NewStyle().Bold(true),
		Dim:          lipgloss.NewStyle().Faint(true),
		Label:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(12),
		FocusedLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true).Width(12),
		Value:        lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Placeholder:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Dropdown: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1).
			MarginLeft(12),
		Row:         lipgloss.NewStyle(),
		CursorRow:   lipgloss.NewStyle().Background(lipgloss.Color("238")).Foreground(lipgloss.Color("226")),
		Input:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		Help:        lipgloss.NewStyle().Faint(true),
		Main:        lipgloss.NewStyle().Padding(1, 2),
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Highlight:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Total:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 2),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		SelectionBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
	}
}

// StatusColor returns the badge color for a document status
func StatusColor(status string) string {
	switch status {
	case "ACTIVE":
		return "78" // green
	case "DRAFT":
		return "214" // yellow
	default:
		return "203"
	}
}
