// Package state holds UI state types for the TUI.
package state

import (
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/domain/publication"
	"github.com/tesso57/pubdesk/internal/presentation/tui/paging"
)

// ModelState holds the presentation state for the TUI.
type ModelState struct {
	Session  Session
	Previous Session

	Public    *ListView
	Dashboard *ListView
	Selection *publication.Selection

	// Searching is true while the search box of the active list has focus.
	Searching bool

	Detail  DetailState
	Form    FormState
	Auth    AuthForm
	Confirm ConfirmState

	Viewport viewport.Model
	Help     help.Model
	Spinner  spinner.Model
	Keys     KeyMap
	Width    int
	Height   int

	User auth.Session

	// AfterLogin is the view opened once a login succeeds.
	AfterLogin Session

	// WatchingExpiry is true while a command waits for the session to expire.
	WatchingExpiry bool

	// SpinnerActive is true while a spinner tick is scheduled.
	SpinnerActive bool

	StatusMessage string
	StatusSeq     int

	Theme Theme
}

// Theme holds the configured colors.
type Theme struct {
	Accent lipgloss.Color
	Muted  lipgloss.Color
	Error  lipgloss.Color
}

// LoggedIn reports whether a session is held.
func (s *ModelState) LoggedIn() bool {
	return s.User.Valid()
}

// ListView is one incrementally loaded list of publications.
type ListView struct {
	Pages     *paging.List[publication.Publication]
	List      list.Model
	Search    textinput.Model
	SearchSeq int

	filter atomic.Pointer[publication.Filter]
}

// NewListView wires a paging list to its bubbles list and search box.
func NewListView(pages *paging.List[publication.Publication], l list.Model, search textinput.Model) *ListView {
	v := &ListView{Pages: pages, List: l, Search: search}
	v.SetFilter(publication.Filter{})
	return v
}

// Filter returns the committed filter. Safe to call from fetch goroutines.
func (v *ListView) Filter() publication.Filter {
	if f := v.filter.Load(); f != nil {
		return *f
	}
	return publication.Filter{}
}

// SetFilter replaces the committed filter.
func (v *ListView) SetFilter(f publication.Filter) {
	v.filter.Store(&f)
}

// Selected returns the publication under the cursor.
func (v *ListView) Selected() (publication.Publication, bool) {
	items := v.Pages.Items()
	idx := v.List.Index()
	if idx < 0 || idx >= len(items) {
		return publication.Publication{}, false
	}
	return items[idx], true
}

// DetailState is the publication shown in the detail view.
type DetailState struct {
	Publication publication.Publication
	Parent      Session
	Loading     bool
	Err         string
}

// FormState is the create/edit form.
type FormState struct {
	Editing    *publication.Publication
	Title      textinput.Model
	Content    textarea.Model
	Status     publication.Status
	Focus      int
	Errors     publication.ValidationError
	Err        string
	Submitting bool
	Parent     Session
}

// Form field indexes, in focus order.
const (
	FieldTitle = iota
	FieldContent
	FieldStatus
	formFields
)

// NewFormState prepares the editor for editing, or for a new publication when editing is nil.
func NewFormState(editing *publication.Publication, parent Session) FormState {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = publication.TitleMaxLength
	title.Prompt = ""

	content := textarea.New()
	content.Placeholder = "Write something..."
	content.CharLimit = publication.ContentMaxLength
	content.ShowLineNumbers = false
	content.SetHeight(6)

	f := FormState{
		Title:   title,
		Content: content,
		Status:  publication.StatusDraft,
		Parent:  parent,
	}
	if editing != nil {
		p := *editing
		f.Editing = &p
		f.Title.SetValue(p.Title)
		f.Content.SetValue(p.Content)
		f.Status = p.Status
	}
	f.Title.Focus()
	return f
}

// FocusNext moves focus forward (delta 1) or backward (delta -1).
func (f *FormState) FocusNext(delta int) {
	f.Focus = (f.Focus + delta + formFields) % formFields
	f.Title.Blur()
	f.Content.Blur()
	switch f.Focus {
	case FieldTitle:
		f.Title.Focus()
	case FieldContent:
		f.Content.Focus()
	}
}

// Draft returns the form values.
func (f *FormState) Draft() publication.Draft {
	return publication.Draft{
		Title:   f.Title.Value(),
		Content: f.Content.Value(),
		Status:  f.Status,
	}
}

// AuthForm is the login/signup form.
type AuthForm struct {
	Signup     bool
	Name       textinput.Model
	Email      textinput.Model
	Password   textinput.Model
	Focus      int
	Errors     auth.FieldErrors
	Err        string
	Notice     string
	Submitting bool
}

// NewAuthForm prepares an empty login (or signup) form.
func NewAuthForm(signup bool, notice string) AuthForm {
	newInput := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 120
		in.Prompt = ""
		return in
	}
	a := AuthForm{
		Signup:   signup,
		Name:     newInput("Your name"),
		Email:    newInput("you@example.com"),
		Password: newInput("Password"),
		Notice:   notice,
	}
	a.Password.EchoMode = textinput.EchoPassword
	a.Password.EchoCharacter = '•'
	a.Inputs()[0].Focus()
	return a
}

// Inputs returns the visible inputs in focus order.
func (a *AuthForm) Inputs() []*textinput.Model {
	if a.Signup {
		return []*textinput.Model{&a.Name, &a.Email, &a.Password}
	}
	return []*textinput.Model{&a.Email, &a.Password}
}

// FocusNext moves focus forward (delta 1) or backward (delta -1).
func (a *AuthForm) FocusNext(delta int) {
	inputs := a.Inputs()
	a.Focus = (a.Focus + delta + len(inputs)) % len(inputs)
	for i, in := range inputs {
		if i == a.Focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// Credentials returns the form values.
func (a *AuthForm) Credentials() auth.Credentials {
	creds := auth.Credentials{
		Email:    a.Email.Value(),
		Password: a.Password.Value(),
	}
	if a.Signup {
		creds.Name = a.Name.Value()
	}
	return creds
}

// ConfirmState is a pending delete or restore.
type ConfirmState struct {
	IDs     []string
	Titles  []string
	Restore bool
	// Bulk is set when the ids come from the selection.
	Bulk   bool
	Parent Session
}
