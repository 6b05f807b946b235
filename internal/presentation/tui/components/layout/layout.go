// Package layout places the sidebar, main area and footer on screen.
package layout

import (
	"github.com/charmbracelet/lipgloss"
)

// Props defines the properties for the layout component.
type Props struct {
	Sidebar string
	Main    string
	Footer  string
	// Width stretches the footer under both columns. Zero keeps its natural width.
	Width int
}

// Render puts the sidebar left of the main area, with the footer below both.
func Render(p Props) string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, p.Sidebar, p.Main)
	footer := p.Footer
	if p.Width > 0 {
		footer = lipgloss.NewStyle().Width(p.Width).Render(footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}
