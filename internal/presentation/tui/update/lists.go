package update

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tesso57/pubdesk/internal/presentation/tui/presenter"
	"github.com/tesso57/pubdesk/internal/presentation/tui/state"
)

func focusSearch(s *state.ModelState, v *state.ListView) tea.Cmd {
	s.Searching = true
	return tea.Batch(v.Search.Focus(), textinput.Blink)
}

// handleSearchKey edits the search box of the active list. Every change is
// debounced; enter commits at once.
func handleSearchKey(s *state.ModelState, msg tea.KeyMsg, deps Deps) (tea.Cmd, bool) {
	v := ActiveList(s)
	if v == nil {
		s.Searching = false
		return nil, false
	}

	switch msg.Type {
	case tea.KeyEsc:
		s.Searching = false
		v.Search.Blur()
		return nil, true
	case tea.KeyEnter:
		s.Searching = false
		v.Search.Blur()
		v.SearchSeq++
		return commitSearch(s, v), true
	}

	before := v.Search.Value()
	var cmd tea.Cmd
	v.Search, cmd = v.Search.Update(msg)
	if v.Search.Value() == before {
		return cmd, true
	}

	v.SearchSeq++
	tick := SearchTickMsg{View: s.Session, Seq: v.SearchSeq}
	return tea.Batch(cmd, debounce(deps, tick)), true
}

func debounce(deps Deps, msg SearchTickMsg) tea.Cmd {
	if deps.Debounce <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(deps.Debounce, func(_ time.Time) tea.Msg { return msg })
}

// HandleSearchTick commits the search text once typing has paused.
func HandleSearchTick(s *state.ModelState, msg SearchTickMsg) tea.Cmd {
	v := s.Public
	if msg.View == state.DashboardView {
		v = s.Dashboard
	}
	if msg.Seq != v.SearchSeq {
		return nil
	}
	return commitSearch(s, v)
}

func commitSearch(s *state.ModelState, v *state.ListView) tea.Cmd {
	if v == s.Dashboard && !s.LoggedIn() {
		return nil
	}
	f := v.Filter()
	f.Search = v.Search.Value()
	v.SetFilter(f)
	return reload(s, v)
}

// SyncLists copies paging state into the visible lists and fires the
// load-more sentinel when the cursor is near the end of the active list.
func SyncLists(s *state.ModelState) tea.Cmd {
	presenter.ApplyList(&s.Public.List, s.Public.Pages.Items(), nil)
	presenter.ApplyList(&s.Dashboard.List, s.Dashboard.Pages.Items(), s.Selection)

	v := ActiveList(s)
	if v == nil || s.Help.ShowAll {
		return nil
	}
	if v.Pages.NearEnd(v.List.Index(), len(v.Pages.Items())) {
		return v.Pages.Reached()
	}
	return nil
}

// Busy reports whether anything the user waits on is in flight.
func Busy(s *state.ModelState) bool {
	if v := ActiveList(s); v != nil && v.Pages.Loading() {
		return true
	}
	return s.Detail.Loading || s.Form.Submitting || s.Auth.Submitting
}

// StartSpinner schedules a spinner tick when work is in flight and none is pending.
func StartSpinner(s *state.ModelState) tea.Cmd {
	if !Busy(s) || s.SpinnerActive {
		return nil
	}
	s.SpinnerActive = true
	return s.Spinner.Tick
}

// HandleSpinnerTick advances the spinner while busy and lets the tick chain stop otherwise.
func HandleSpinnerTick(s *state.ModelState, msg spinner.TickMsg) tea.Cmd {
	if !Busy(s) {
		s.SpinnerActive = false
		return nil
	}
	var cmd tea.Cmd
	s.Spinner, cmd = s.Spinner.Update(msg)
	return cmd
}

// ForwardKey passes navigation keys to the list or viewport of the current view.
func ForwardKey(s *state.ModelState, msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch s.Session {
	case state.PublicView:
		s.Public.List, cmd = s.Public.List.Update(msg)
	case state.DashboardView:
		s.Dashboard.List, cmd = s.Dashboard.List.Update(msg)
	case state.DetailView:
		s.Viewport, cmd = s.Viewport.Update(msg)
	}
	return cmd
}

func containsFold(text, sub string) bool {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(sub))
}
