// Package tui provides the main user interface model and view components.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tesso57/pubdesk/internal/domain/publication"
	"github.com/tesso57/pubdesk/internal/presentation/tui/components/header"
	mainview "github.com/tesso57/pubdesk/internal/presentation/tui/components/main"
	"github.com/tesso57/pubdesk/internal/presentation/tui/components/modal"
	"github.com/tesso57/pubdesk/internal/presentation/tui/components/sidebar"
	"github.com/tesso57/pubdesk/internal/presentation/tui/metrics"
	"github.com/tesso57/pubdesk/internal/presentation/tui/presenter"
	"github.com/tesso57/pubdesk/internal/presentation/tui/state"
	"github.com/tesso57/pubdesk/internal/presentation/tui/textutil"
	"github.com/tesso57/pubdesk/internal/presentation/tui/update"
	"github.com/tesso57/pubdesk/internal/presentation/tui/view"
)

func (m *Model) buildProps() view.Props {
	return view.Props{
		Sidebar: m.buildSidebarProps(),
		Header:  m.buildHeaderProps(),
		Main:    m.buildMainProps(),
		Modal:   m.buildModalProps(),
		Footer:  m.buildFooterProps(),
	}
}

// screen is the view under any modal.
func (m *Model) screen() state.Session {
	s := m.state
	switch s.Session {
	case state.FormView:
		return s.Form.Parent
	case state.ConfirmView:
		return s.Confirm.Parent
	case state.QuitView:
		return s.Previous
	case state.LoginView:
		return state.PublicView
	}
	return s.Session
}

func (m *Model) buildSidebarProps() sidebar.Props {
	s := m.state
	layout := update.BuildLayout(s)

	current := m.screen()
	if current == state.DetailView {
		current = s.Detail.Parent
	}

	info := []string{"Not signed in"}
	if s.LoggedIn() {
		info = []string{"Signed in"}
	}
	if n := s.Selection.Len(); n > 0 {
		info = append(info, fmt.Sprintf("%d selected", n))
	}

	return sidebar.Props{
		Title: "Pubdesk",
		Entries: []sidebar.Entry{
			{Label: "Public", Active: current == state.PublicView},
			{Label: "Dashboard", Active: current == state.DashboardView},
		},
		Info:   info,
		Width:  layout.SidebarWidth,
		Height: layout.MainHeight,
		Accent: s.Theme.Accent,
		Muted:  s.Theme.Muted,
	}
}

func (m *Model) buildHeaderProps() header.Props {
	s := m.state
	width := update.BuildLayout(s).MainWidth - 1

	props := header.Props{Visible: true, Muted: s.Theme.Muted}
	switch m.screen() {
	case state.DetailView:
		p := s.Detail.Publication
		props.Title = lipgloss.NewStyle().Bold(true).Render(textutil.Excerpt(p.Title, width))
		props.Meta = textutil.Truncate(detailMeta(p), width)
	case state.DashboardView:
		props.Title = s.Dashboard.Search.View()
		props.Meta = textutil.Truncate(dashboardMeta(s.Dashboard.Filter()), width)
	default:
		props.Title = s.Public.Search.View()
		props.Meta = "Published publications"
	}
	return props
}

func detailMeta(p publication.Publication) string {
	parts := []string{string(p.Status)}
	if !p.CreatedAt.IsZero() {
		parts = append(parts, "created "+p.CreatedAt.Local().Format(presenter.DateLayout))
	}
	if !p.UpdatedAt.IsZero() {
		parts = append(parts, "updated "+p.UpdatedAt.Local().Format(presenter.DateLayout))
	}
	return strings.Join(parts, " | ")
}

func dashboardMeta(f publication.Filter) string {
	status := "All"
	if f.Status != "" {
		status = string(f.Status)
	}
	trash := "off"
	if f.ShowDeleted {
		trash = "on"
	}
	return fmt.Sprintf("Status: %s | Trash: %s", status, trash)
}

func (m *Model) buildMainProps() mainview.Props {
	s := m.state
	layout := update.BuildLayout(s)
	props := mainview.Props{Width: layout.MainWidth, Height: layout.MainHeight}

	if m.screen() == state.DetailView {
		props.Body = s.Viewport.View()
		props.Status = m.detailStatus()
		return props
	}

	v := s.Public
	if m.screen() == state.DashboardView {
		v = s.Dashboard
	}
	props.Body = m.listBody(v)
	props.Status = m.listStatus(v)
	return props
}

func (m *Model) listBody(v *state.ListView) string {
	pages := v.Pages
	muted := lipgloss.NewStyle().Foreground(m.state.Theme.Muted)
	if len(pages.Items()) == 0 {
		if pages.Loading() {
			rows := make([]string, metrics.SkeletonRows)
			for i := range rows {
				rows[i] = muted.Render("  ░░░░░░░░░░░░░░░░░░░░")
			}
			return strings.Join(rows, "\n")
		}
		if pages.Err() == "" {
			return muted.Render("No publications found")
		}
		return ""
	}
	return v.List.View()
}

func (m *Model) listStatus(v *state.ListView) string {
	s := m.state
	pages := v.Pages
	switch {
	case pages.Err() != "":
		return m.errorLine(pages.Err())
	case pages.Loading() && len(pages.Items()) > 0:
		return s.Spinner.View() + " Loading more..."
	case pages.Loading():
		return s.Spinner.View() + " Loading..."
	case len(pages.Items()) > 0 && !pages.HasMore():
		return lipgloss.NewStyle().Foreground(s.Theme.Muted).Render("No more publications")
	}
	return ""
}

func (m *Model) detailStatus() string {
	d := m.state.Detail
	switch {
	case d.Err != "":
		return m.errorLine(d.Err)
	case d.Loading:
		return m.state.Spinner.View() + " Refreshing..."
	}
	return ""
}

func (m *Model) errorLine(text string) string {
	s := m.state
	errStyle := lipgloss.NewStyle().Foreground(s.Theme.Error)
	retry := s.Keys.Retry.Help().Key
	return errStyle.Render(fmt.Sprintf("%s (press %s to retry)", text, retry))
}

func (m *Model) buildModalProps() modal.Props {
	s := m.state
	props := modal.Props{
		Width:  s.Width,
		Height: clampHeight(s.Height - lipgloss.Height(m.buildFooterProps())),
		Accent: s.Theme.Accent,
		Danger: s.Theme.Error,
	}

	switch {
	case s.Session == state.FormView:
		props.Kind = modal.Form
		props.Title = "New publication"
		if s.Form.Editing != nil {
			props.Title = "Edit publication"
		}
		props.Body = m.formBody()
	case s.Session == state.LoginView:
		props.Kind = modal.Auth
		props.Title = "Log in"
		if s.Auth.Signup {
			props.Title = "Sign up"
		}
		props.Body = m.authBody()
	case s.Session == state.ConfirmView:
		props.Kind = modal.Confirm
		props.Title = "Delete"
		if s.Confirm.Restore {
			props.Title = "Restore"
		}
		props.Body = m.confirmBody()
	case s.Session == state.QuitView:
		props.Kind = modal.Quit
		props.Title = "Quit"
		props.Body = "Quit pubdesk? (y/n)"
	case s.Help.ShowAll:
		props.Kind = modal.Help
		props.Title = "Keys"
		props.Body = s.Help.FullHelpView(s.Keys.FullHelp())
	default:
		return props
	}
	props.Visible = true
	return props
}

func (m *Model) formBody() string {
	s := m.state
	f := s.Form
	errStyle := lipgloss.NewStyle().Foreground(s.Theme.Error)
	muted := lipgloss.NewStyle().Foreground(s.Theme.Muted)
	label := func(name string, idx int) string {
		if f.Focus == idx {
			return lipgloss.NewStyle().Bold(true).Foreground(s.Theme.Accent).Render(name)
		}
		return name
	}
	fieldErr := func(field string) string {
		if msg, ok := f.Errors[field]; ok {
			return "\n" + errStyle.Render(msg)
		}
		return ""
	}

	status := "( ) Draft  (•) Published"
	if f.Status == publication.StatusDraft {
		status = "(•) Draft  ( ) Published"
	}

	lines := []string{
		label("Title", state.FieldTitle),
		f.Title.View() + fieldErr("title"),
		"",
		label("Content", state.FieldContent),
		f.Content.View() + fieldErr("content"),
		"",
		label("Status", state.FieldStatus),
		status + fieldErr("status"),
		"",
	}
	switch {
	case f.Submitting:
		lines = append(lines, s.Spinner.View()+" Saving...")
	case f.Err != "":
		lines = append(lines, errStyle.Render(f.Err))
	}
	lines = append(lines, muted.Render("tab: next field • space: toggle status • ctrl+s: save • esc: cancel"))
	return strings.Join(lines, "\n")
}

func (m *Model) authBody() string {
	s := m.state
	a := s.Auth
	errStyle := lipgloss.NewStyle().Foreground(s.Theme.Error)
	muted := lipgloss.NewStyle().Foreground(s.Theme.Muted)

	var lines []string
	if a.Notice != "" {
		lines = append(lines, a.Notice, "")
	}

	fields := []struct {
		key   string
		label string
	}{{"email", "Email"}, {"password", "Password"}}
	if a.Signup {
		fields = append([]struct {
			key   string
			label string
		}{{"name", "Name"}}, fields...)
	}
	for i, in := range a.Inputs() {
		field := fields[i]
		name := field.label
		if a.Focus == i {
			name = lipgloss.NewStyle().Bold(true).Foreground(s.Theme.Accent).Render(name)
		}
		lines = append(lines, name, in.View())
		if msg, ok := a.Errors[field.key]; ok {
			lines = append(lines, errStyle.Render(msg))
		}
		lines = append(lines, "")
	}

	switch {
	case a.Submitting:
		lines = append(lines, s.Spinner.View()+" Please wait...")
	case a.Err != "":
		lines = append(lines, errStyle.Render(a.Err))
	}
	toggle := "ctrl+n: create an account"
	if a.Signup {
		toggle = "ctrl+n: log in instead"
	}
	lines = append(lines, muted.Render("enter: submit • "+toggle+" • esc: cancel"))
	return strings.Join(lines, "\n")
}

func (m *Model) confirmBody() string {
	c := m.state.Confirm
	verb := "Delete"
	if c.Restore {
		verb = "Restore"
	}

	titles := append([]string(nil), c.Titles...)
	sort.Strings(titles)
	const shown = 5
	lines := make([]string, 0, shown+3)
	if len(titles) == 1 {
		lines = append(lines, fmt.Sprintf("%s %q?", verb, textutil.Excerpt(titles[0], 40)))
	} else {
		lines = append(lines, fmt.Sprintf("%s %d publications?", verb, len(titles)))
		for i, t := range titles {
			if i == shown {
				lines = append(lines, fmt.Sprintf("  ... and %d more", len(titles)-shown))
				break
			}
			lines = append(lines, "  - "+textutil.Excerpt(t, 40))
		}
	}
	lines = append(lines, "", "(y/n)")
	return strings.Join(lines, "\n")
}

func (m *Model) buildFooterProps() string {
	s := m.state
	return state.FooterText(s.StatusMessage, s.Help.ShortHelpView(s.Keys.ShortHelp()))
}

func clampHeight(h int) int {
	if h < 1 {
		return 1
	}
	return h
}
