package update

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tesso57/pubdesk/internal/presentation/tui/metrics"
	"github.com/tesso57/pubdesk/internal/presentation/tui/state"
)

// Layout is the size of each screen region.
type Layout struct {
	SidebarWidth   int
	MainWidth      int
	MainHeight     int
	ListHeight     int
	ViewportHeight int
	FormWidth      int
}

// UpdateListSizes resizes every sized component to the current terminal.
func UpdateListSizes(s *state.ModelState) {
	if s.Width <= 0 || s.Height <= 0 {
		return
	}

	layout := BuildLayout(s)
	contentWidth := clampMin(layout.MainWidth-1, 1) // main view has left padding of 1
	for _, v := range []*state.ListView{s.Public, s.Dashboard} {
		v.List.SetSize(contentWidth, layout.ListHeight)
		v.Search.Width = clampMin(contentWidth-lipgloss.Width(v.Search.Prompt)-1, 1)
	}
	s.Viewport.Width = contentWidth
	s.Viewport.Height = layout.ViewportHeight

	s.Form.Title.Width = layout.FormWidth
	s.Form.Content.SetWidth(layout.FormWidth)
	authWidth := clampMin(layout.FormWidth/2, 20)
	s.Auth.Name.Width = authWidth
	s.Auth.Email.Width = authWidth
	s.Auth.Password.Width = authWidth
}

// BuildLayout computes region sizes from the terminal size.
func BuildLayout(s *state.ModelState) Layout {
	mainHeight := clampMin(s.Height-footerHeight(s), 1)

	sidebarWidth := clampRange(s.Width/4, metrics.SidebarMinWidth, metrics.SidebarMaxWidth)
	mainWidth := clampMin(s.Width-sidebarWidth-metrics.SidebarBorder, 1)

	return Layout{
		SidebarWidth:   sidebarWidth,
		MainWidth:      mainWidth,
		MainHeight:     mainHeight,
		ListHeight:     clampMin(mainHeight-metrics.HeaderLines-metrics.ListStatusLines, 1),
		ViewportHeight: clampMin(mainHeight-metrics.HeaderLines, 1),
		FormWidth:      clampRange(s.Width-16, 20, 72),
	}
}

func footerHeight(s *state.ModelState) int {
	s.Help.Width = s.Width
	return lipgloss.Height(state.FooterText(s.StatusMessage, s.Help.ShortHelpView(s.Keys.ShortHelp())))
}

func clampMin(value, min int) int {
	if value < min {
		return min
	}
	return value
}

func clampRange(value, lo, hi int) int {
	if value > hi {
		value = hi
	}
	return clampMin(value, lo)
}
