// Package header provides the main area header component.
package header

import (
	"github.com/charmbracelet/lipgloss"
)

// Props defines the properties for the header component.
type Props struct {
	Visible bool
	// Title is the first line: the search box in list views, the
	// publication title in the detail view.
	Title string
	Meta  string
	Muted lipgloss.Color
}

// Render renders the header component.
func Render(p Props) string {
	if !p.Visible {
		return ""
	}
	meta := lipgloss.NewStyle().Foreground(p.Muted).Render(p.Meta)
	return lipgloss.JoinVertical(lipgloss.Left, p.Title, meta)
}
