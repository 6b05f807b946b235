package update

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/domain/publication"
	"github.com/tesso57/pubdesk/internal/presentation/tui/state"
)

func handleFormKey(s *state.ModelState, msg tea.KeyMsg, deps Deps) (tea.Cmd, bool) {
	f := &s.Form
	switch msg.Type {
	case tea.KeyEsc:
		if !f.Submitting {
			s.Session = f.Parent
		}
		return nil, true
	case tea.KeyCtrlS:
		return submitForm(s, deps), true
	case tea.KeyTab:
		f.FocusNext(1)
		return nil, true
	case tea.KeyShiftTab:
		f.FocusNext(-1)
		return nil, true
	}

	switch f.Focus {
	case state.FieldTitle:
		if msg.Type == tea.KeyEnter {
			f.FocusNext(1)
			return nil, true
		}
		var cmd tea.Cmd
		f.Title, cmd = f.Title.Update(msg)
		return cmd, true
	case state.FieldContent:
		var cmd tea.Cmd
		f.Content, cmd = f.Content.Update(msg)
		return cmd, true
	default:
		switch msg.String() {
		case " ", "left", "right", "h", "l":
			f.Status = f.Status.Toggle()
		case "enter":
			return submitForm(s, deps), true
		}
		return nil, true
	}
}

// submitForm validates the draft and sends it.
func submitForm(s *state.ModelState, deps Deps) tea.Cmd {
	f := &s.Form
	if f.Submitting {
		return nil
	}
	draft := f.Draft().Normalize()
	if err := draft.Validate(); err != nil {
		var verr publication.ValidationError
		if errors.As(err, &verr) {
			f.Errors = verr
			return nil
		}
		f.Err = err.Error()
		return nil
	}
	f.Errors = nil
	f.Err = ""
	f.Submitting = true
	return SaveCmd(deps.Publications, f.Editing, draft)
}

// HandleSaved closes the editor on success and reconciles the dashboard.
func HandleSaved(s *state.ModelState, msg SavedMsg, deps Deps) tea.Cmd {
	f := &s.Form
	f.Submitting = false
	if msg.Err != nil {
		var verr publication.ValidationError
		if errors.As(msg.Err, &verr) {
			f.Errors = verr
			return nil
		}
		f.Err = deps.describe(msg.Err, "Failed to save publication")
		return nil
	}

	if s.Session == state.FormView {
		s.Session = f.Parent
	}
	if msg.Created {
		if matches(msg.Publication, s.Dashboard.Filter()) {
			s.Dashboard.Pages.Prepend(msg.Publication)
			s.Dashboard.List.ResetSelected()
		}
		return SetStatus(s, "Publication created", deps)
	}
	applyUpdated(s, msg.Publication, deps)
	return SetStatus(s, "Publication updated", deps)
}

func handleAuthKey(s *state.ModelState, msg tea.KeyMsg, deps Deps) (tea.Cmd, bool) {
	a := &s.Auth
	if a.Submitting {
		return nil, true
	}
	switch msg.Type {
	case tea.KeyEsc:
		return enterPublic(s), true
	case tea.KeyCtrlN:
		notice := a.Notice
		s.Auth = state.NewAuthForm(!a.Signup, notice)
		return nil, true
	case tea.KeyTab, tea.KeyDown:
		a.FocusNext(1)
		return nil, true
	case tea.KeyShiftTab, tea.KeyUp:
		a.FocusNext(-1)
		return nil, true
	case tea.KeyEnter:
		if a.Focus < len(a.Inputs())-1 {
			a.FocusNext(1)
			return nil, true
		}
		a.Errors = nil
		a.Err = ""
		a.Submitting = true
		return AuthCmd(deps.Auth, a.Credentials(), a.Signup), true
	}

	var cmd tea.Cmd
	in := a.Inputs()[a.Focus]
	*in, cmd = in.Update(msg)
	return cmd, true
}

// HandleAuthDone stores the new session and opens the view that asked for it.
func HandleAuthDone(s *state.ModelState, msg AuthDoneMsg, deps Deps) tea.Cmd {
	a := &s.Auth
	a.Submitting = false
	if msg.Err != nil {
		var fields auth.FieldErrors
		if errors.As(msg.Err, &fields) {
			a.Errors = fields
			return nil
		}
		fallback := "Login failed"
		if msg.Signup {
			fallback = "Signup failed"
		}
		a.Err = deps.describe(msg.Err, fallback)
		return nil
	}

	s.User = msg.Session
	s.Auth = state.NewAuthForm(false, "")
	welcome := "Welcome back"
	if msg.Signup {
		welcome = "Account created"
	}

	next := enterPublic
	if s.AfterLogin == state.DashboardView {
		next = enterDashboard
	}
	return tea.Batch(next(s), watchExpiry(s, deps), SetStatus(s, welcome, deps))
}
