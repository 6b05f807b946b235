// Package sidebar provides the sidebar component.
package sidebar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Entry is one navigation line.
type Entry struct {
	Label  string
	Active bool
}

// Props defines the properties for the sidebar component.
type Props struct {
	Title   string
	Entries []Entry
	// Info lines are shown under the navigation (account, selection).
	Info   []string
	Width  int
	Height int
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

// Render renders the sidebar component.
func Render(p Props) string {
	sidebarStyle := lipgloss.NewStyle().
		Width(p.Width).
		Height(p.Height).
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(p.Accent)

	titleStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		PaddingBottom(1).
		Bold(true).
		Foreground(p.Accent)

	active := lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(p.Muted)

	lines := make([]string, 0, len(p.Entries)+len(p.Info)+1)
	for _, e := range p.Entries {
		if e.Active {
			lines = append(lines, active.Render("> "+e.Label))
			continue
		}
		lines = append(lines, "  "+e.Label)
	}
	if len(p.Info) > 0 {
		lines = append(lines, "")
		for _, info := range p.Info {
			lines = append(lines, muted.Render("  "+info))
		}
	}

	return sidebarStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(p.Title),
		strings.Join(lines, "\n"),
	))
}
