// Package update holds UI update logic for the TUI.
package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tesso57/pubdesk/internal/application/usecase"
	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/domain/publication"
	"github.com/tesso57/pubdesk/internal/presentation/tui/intent"
	"github.com/tesso57/pubdesk/internal/presentation/tui/state"
)

const defaultStatusTTL = 3 * time.Second

// Deps groups external dependencies for updates.
type Deps struct {
	Publications usecase.PublicationService
	Auth         usecase.AuthService
	Watch        *usecase.SessionWatch

	// Debounce delays search input before it reaches a list.
	Debounce time.Duration
	// StatusTTL is how long a footer status message stays visible.
	StatusTTL time.Duration
	// MarkdownStyle is the glamour style used by the detail view.
	MarkdownStyle string
	// Describe turns an error into a message for the user.
	Describe func(err error, fallback string) string
}

func (d Deps) describe(err error, fallback string) string {
	if d.Describe != nil {
		return d.Describe(err, fallback)
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// SearchTickMsg fires once the debounce delay after a keystroke has passed.
type SearchTickMsg struct {
	View state.Session
	Seq  int
}

// DetailLoadedMsg is emitted after fetching one publication.
type DetailLoadedMsg struct {
	ID          string
	Publication publication.Publication
	Err         error
}

// SavedMsg is emitted after creating or updating a publication.
type SavedMsg struct {
	Publication publication.Publication
	Created     bool
	Err         error
}

// StatusChangedMsg is emitted after publishing or unpublishing.
type StatusChangedMsg struct {
	Publication publication.Publication
	Err         error
}

// RemovedMsg is emitted after a delete or restore.
type RemovedMsg struct {
	IDs     []string
	Restore bool
	Count   int
	Err     error
}

// AuthDoneMsg is emitted after a login or signup attempt.
type AuthDoneMsg struct {
	Session auth.Session
	Signup  bool
	Err     error
}

// SessionExpiredMsg is emitted when the API rejects the stored session.
type SessionExpiredMsg struct{}

// ClearStatusMsg hides the footer status message it was scheduled for.
type ClearStatusMsg struct {
	Seq int
}

// LoadDetailCmd fetches the latest version of a publication.
func LoadDetailCmd(svc usecase.PublicationService, id string, public bool) tea.Cmd {
	return func() tea.Msg {
		var (
			p   publication.Publication
			err error
		)
		if public {
			p, err = svc.GetPublic(context.Background(), id)
		} else {
			p, err = svc.Get(context.Background(), id)
		}
		return DetailLoadedMsg{ID: id, Publication: p, Err: err}
	}
}

// SaveCmd creates a publication, or updates editing when it is not nil.
func SaveCmd(svc usecase.PublicationService, editing *publication.Publication, draft publication.Draft) tea.Cmd {
	return func() tea.Msg {
		p, err := svc.Save(context.Background(), editing, draft)
		return SavedMsg{Publication: p, Created: editing == nil, Err: err}
	}
}

// SetStatusCmd publishes or unpublishes a publication.
func SetStatusCmd(svc usecase.PublicationService, id string, status publication.Status) tea.Cmd {
	return func() tea.Msg {
		p, err := svc.SetStatus(context.Background(), id, status)
		return StatusChangedMsg{Publication: p, Err: err}
	}
}

// RemoveCmd deletes (or restores) one publication, or the whole selection when bulk is set.
func RemoveCmd(svc usecase.PublicationService, ids []string, restore, bulk bool) tea.Cmd {
	ids = append([]string(nil), ids...)
	return func() tea.Msg {
		if !bulk && len(ids) == 1 {
			if err := svc.Remove(context.Background(), ids[0], restore); err != nil {
				return RemovedMsg{IDs: ids, Restore: restore, Err: err}
			}
			return RemovedMsg{IDs: ids, Restore: restore, Count: 1}
		}
		res, err := svc.RemoveMany(context.Background(), ids, restore)
		return RemovedMsg{IDs: ids, Restore: restore, Count: res.Count, Err: err}
	}
}

// AuthCmd logs in, or signs up when signup is set.
func AuthCmd(svc usecase.AuthService, creds auth.Credentials, signup bool) tea.Cmd {
	return func() tea.Msg {
		var (
			session auth.Session
			err     error
		)
		if signup {
			session, err = svc.Signup(context.Background(), creds)
		} else {
			session, err = svc.Login(context.Background(), creds)
		}
		return AuthDoneMsg{Session: session, Signup: signup, Err: err}
	}
}

// WaitExpiryCmd blocks until the watch reports an expired session.
func WaitExpiryCmd(watch *usecase.SessionWatch) tea.Cmd {
	if watch == nil {
		return nil
	}
	done := watch.Done()
	return func() tea.Msg {
		<-done
		return SessionExpiredMsg{}
	}
}

// Start opens the first view: the dashboard for a stored session, the public list otherwise.
func Start(s *state.ModelState, deps Deps) tea.Cmd {
	cmds := []tea.Cmd{watchExpiry(s, deps)}
	if s.LoggedIn() {
		cmds = append(cmds, enterDashboard(s))
	} else {
		cmds = append(cmds, enterPublic(s))
	}
	return tea.Batch(cmds...)
}

func watchExpiry(s *state.ModelState, deps Deps) tea.Cmd {
	if s.WatchingExpiry || deps.Watch == nil {
		return nil
	}
	s.WatchingExpiry = true
	return WaitExpiryCmd(deps.Watch)
}

// SetStatus shows a footer message and schedules its removal.
func SetStatus(s *state.ModelState, text string, deps Deps) tea.Cmd {
	s.StatusSeq++
	s.StatusMessage = text
	ttl := deps.StatusTTL
	if ttl <= 0 {
		ttl = defaultStatusTTL
	}
	seq := s.StatusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// HandleClearStatus hides the status message unless a newer one replaced it.
func HandleClearStatus(s *state.ModelState, msg ClearStatusMsg) {
	if msg.Seq == s.StatusSeq {
		s.StatusMessage = ""
	}
}

// HandleKeyMsg processes key input based on the current session.
func HandleKeyMsg(s *state.ModelState, msg tea.KeyMsg, deps Deps) (tea.Cmd, bool) {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit, true
	}

	switch s.Session {
	case state.QuitView:
		return handleQuitView(s, msg)
	case state.LoginView:
		return handleAuthKey(s, msg, deps)
	case state.FormView:
		return handleFormKey(s, msg, deps)
	case state.ConfirmView:
		return handleConfirmKey(s, msg, deps)
	}

	parsed := intent.FromKeyMsg(msg, s.Keys)
	if s.Help.ShowAll {
		if parsed.Type == intent.ToggleHelp || parsed.Type == intent.Back || parsed.Type == intent.Quit {
			s.Help.ShowAll = false
		}
		return nil, true
	}
	if s.Searching {
		return handleSearchKey(s, msg, deps)
	}

	switch parsed.Type {
	case intent.Quit:
		s.Previous = s.Session
		s.Session = state.QuitView
		return nil, true
	case intent.ToggleHelp:
		s.Help.ShowAll = true
		return nil, true
	}

	switch s.Session {
	case state.PublicView:
		return handlePublicIntent(s, parsed, deps)
	case state.DashboardView:
		return handleDashboardIntent(s, parsed, deps)
	case state.DetailView:
		return handleDetailIntent(s, parsed, deps)
	default:
		return nil, false
	}
}

// HandleWindowSize updates layout sizing based on terminal size.
func HandleWindowSize(s *state.ModelState, msg tea.WindowSizeMsg, deps Deps) {
	s.Width = msg.Width
	s.Height = msg.Height

	UpdateListSizes(s)
	if s.Session == state.DetailView {
		refreshDetailViewport(s, deps)
	}
}

func handleQuitView(s *state.ModelState, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "y", "Y":
		return tea.Quit, true
	case "n", "N", "esc", "q", "Q":
		s.Session = s.Previous
		return nil, true
	}
	return nil, true
}

func handlePublicIntent(s *state.ModelState, in intent.Intent, deps Deps) (tea.Cmd, bool) {
	switch in.Type {
	case intent.Open:
		return openDetail(s, s.Public, deps), true
	case intent.SwitchView:
		return enterDashboard(s), true
	case intent.Search:
		return focusSearch(s, s.Public), true
	case intent.Retry:
		return s.Public.Pages.TryAgain(), true
	case intent.Back:
		return nil, true
	}
	return nil, false
}

func handleDashboardIntent(s *state.ModelState, in intent.Intent, deps Deps) (tea.Cmd, bool) {
	v := s.Dashboard
	switch in.Type {
	case intent.Open:
		return openDetail(s, v, deps), true
	case intent.SwitchView:
		return enterPublic(s), true
	case intent.Back:
		s.Selection.Clear()
		return nil, true
	case intent.Search:
		return focusSearch(s, v), true
	case intent.StatusFilter:
		f := v.Filter()
		f.Status = publication.NextStatusFilter(f.Status)
		v.SetFilter(f)
		return reload(s, v), true
	case intent.Trash:
		f := v.Filter()
		f.ShowDeleted = !f.ShowDeleted
		v.SetFilter(f)
		s.Selection.Clear()
		return reload(s, v), true
	case intent.Select:
		if p, ok := v.Selected(); ok {
			s.Selection.Toggle(p)
			v.List.CursorDown()
		}
		return nil, true
	case intent.New:
		s.Form = state.NewFormState(nil, state.DashboardView)
		s.Session = state.FormView
		UpdateListSizes(s)
		return nil, true
	case intent.Edit:
		if p, ok := v.Selected(); ok {
			return openForm(s, p, state.DashboardView, deps), true
		}
		return nil, true
	case intent.Delete:
		return confirmRemoval(s, state.DashboardView), true
	case intent.ToggleStatus:
		if p, ok := v.Selected(); ok {
			return toggleStatus(s, p, deps), true
		}
		return nil, true
	case intent.Retry:
		return v.Pages.TryAgain(), true
	case intent.Logout:
		return logout(s, deps), true
	}
	return nil, false
}

func handleDetailIntent(s *state.ModelState, in intent.Intent, deps Deps) (tea.Cmd, bool) {
	owned := s.Detail.Parent == state.DashboardView
	switch in.Type {
	case intent.Back:
		s.Session = s.Detail.Parent
		return nil, true
	case intent.Retry:
		if s.Detail.Err == "" {
			return nil, true
		}
		s.Detail.Err = ""
		s.Detail.Loading = true
		return LoadDetailCmd(deps.Publications, s.Detail.Publication.ID, !owned), true
	case intent.Edit:
		if owned {
			return openForm(s, s.Detail.Publication, state.DetailView, deps), true
		}
		return nil, true
	case intent.Delete:
		if owned {
			return confirmIDs(s, []publication.Selected{selectedOf(s.Detail.Publication)}, false, state.DetailView), true
		}
		return nil, true
	case intent.ToggleStatus:
		if owned {
			return toggleStatus(s, s.Detail.Publication, deps), true
		}
		return nil, true
	case intent.SwitchView, intent.Search, intent.Open:
		return nil, true
	}
	return nil, false
}

// ActiveList returns the list shown by the current view, or nil.
func ActiveList(s *state.ModelState) *state.ListView {
	switch s.Session {
	case state.PublicView:
		return s.Public
	case state.DashboardView:
		return s.Dashboard
	default:
		return nil
	}
}

func enterPublic(s *state.ModelState) tea.Cmd {
	s.Session = state.PublicView
	s.Searching = false
	return reload(s, s.Public)
}

// enterDashboard opens the private dashboard, routing through the login form when signed out.
func enterDashboard(s *state.ModelState) tea.Cmd {
	s.Searching = false
	if !s.LoggedIn() {
		openLogin(s, "Log in to manage your publications.")
		return nil
	}
	s.Session = state.DashboardView
	return reload(s, s.Dashboard)
}

func openLogin(s *state.ModelState, notice string) {
	s.AfterLogin = state.DashboardView
	s.Auth = state.NewAuthForm(false, notice)
	s.Session = state.LoginView
}

// reload pushes the committed filter of v into its dependency list. The list
// reloads only when the dependencies changed.
func reload(s *state.ModelState, v *state.ListView) tea.Cmd {
	f := v.Filter()
	if v == s.Public {
		return v.Pages.SetDeps(f.Deps()[0])
	}
	return v.Pages.SetDeps(append(f.Deps(), s.User.UserID)...)
}

func openDetail(s *state.ModelState, v *state.ListView, deps Deps) tea.Cmd {
	p, ok := v.Selected()
	if !ok {
		return nil
	}
	parent := s.Session
	s.Detail = state.DetailState{Publication: p, Parent: parent, Loading: true}
	s.Session = state.DetailView
	UpdateListSizes(s)
	refreshDetailViewport(s, deps)
	return LoadDetailCmd(deps.Publications, p.ID, parent == state.PublicView)
}

// HandleDetailLoaded applies a fetched publication to the detail view and its list.
func HandleDetailLoaded(s *state.ModelState, msg DetailLoadedMsg, deps Deps) {
	if msg.ID != s.Detail.Publication.ID {
		return
	}
	s.Detail.Loading = false
	if msg.Err != nil {
		s.Detail.Err = deps.describe(msg.Err, "Failed to load publication")
		return
	}
	s.Detail.Err = ""
	s.Detail.Publication = msg.Publication
	parentList(s, s.Detail.Parent).Pages.Replace(msg.Publication)
	if s.Session == state.DetailView {
		refreshDetailViewport(s, deps)
	}
}

func parentList(s *state.ModelState, parent state.Session) *state.ListView {
	if parent == state.PublicView {
		return s.Public
	}
	return s.Dashboard
}

func openForm(s *state.ModelState, p publication.Publication, parent state.Session, deps Deps) tea.Cmd {
	if s.Dashboard.Filter().ShowDeleted {
		return SetStatus(s, "Restore the publication before editing it", deps)
	}
	s.Form = state.NewFormState(&p, parent)
	s.Session = state.FormView
	UpdateListSizes(s)
	return nil
}

func toggleStatus(s *state.ModelState, p publication.Publication, deps Deps) tea.Cmd {
	if s.Dashboard.Filter().ShowDeleted {
		return SetStatus(s, "Restore the publication before changing its status", deps)
	}
	return SetStatusCmd(deps.Publications, p.ID, p.Status.Toggle())
}

func selectedOf(p publication.Publication) publication.Selected {
	return publication.Selected{ID: p.ID, Title: p.Title, Status: p.Status}
}

func confirmRemoval(s *state.ModelState, parent state.Session) tea.Cmd {
	if s.Selection.Len() > 0 {
		return confirmIDs(s, s.Selection.Items(), true, parent)
	}
	p, ok := s.Dashboard.Selected()
	if !ok {
		return nil
	}
	return confirmIDs(s, []publication.Selected{selectedOf(p)}, false, parent)
}

func confirmIDs(s *state.ModelState, items []publication.Selected, bulk bool, parent state.Session) tea.Cmd {
	c := state.ConfirmState{
		Restore: s.Dashboard.Filter().ShowDeleted,
		Bulk:    bulk,
		Parent:  parent,
	}
	for _, item := range items {
		c.IDs = append(c.IDs, item.ID)
		c.Titles = append(c.Titles, item.Title)
	}
	s.Confirm = c
	s.Session = state.ConfirmView
	return nil
}

func handleConfirmKey(s *state.ModelState, msg tea.KeyMsg, deps Deps) (tea.Cmd, bool) {
	switch msg.String() {
	case "y", "Y":
		c := s.Confirm
		s.Session = c.Parent
		verb := "Deleting"
		if c.Restore {
			verb = "Restoring"
		}
		return tea.Batch(
			SetStatus(s, fmt.Sprintf("%s %s...", verb, countNoun(len(c.IDs))), deps),
			RemoveCmd(deps.Publications, c.IDs, c.Restore, c.Bulk),
		), true
	case "n", "N", "esc", "q", "Q":
		s.Session = s.Confirm.Parent
		return nil, true
	}
	return nil, true
}

// HandleRemoved drops deleted or restored publications from the dashboard.
func HandleRemoved(s *state.ModelState, msg RemovedMsg, deps Deps) tea.Cmd {
	if msg.Err != nil {
		fallback := "Failed to delete publication"
		if msg.Restore {
			fallback = "Failed to restore publication"
		}
		return SetStatus(s, deps.describe(msg.Err, fallback), deps)
	}

	s.Dashboard.Pages.Remove(msg.IDs...)
	for _, id := range msg.IDs {
		s.Selection.Remove(id)
		if s.Session == state.DetailView && s.Detail.Publication.ID == id {
			s.Session = s.Detail.Parent
		}
	}

	verb := "Deleted"
	if msg.Restore {
		verb = "Restored"
	}
	return SetStatus(s, fmt.Sprintf("%s %s", verb, countNoun(msg.Count)), deps)
}

// HandleStatusChanged applies a publish/unpublish result.
func HandleStatusChanged(s *state.ModelState, msg StatusChangedMsg, deps Deps) tea.Cmd {
	if msg.Err != nil {
		return SetStatus(s, deps.describe(msg.Err, "Failed to update status"), deps)
	}
	applyUpdated(s, msg.Publication, deps)
	if msg.Publication.Status == publication.StatusPublished {
		return SetStatus(s, "Publication published", deps)
	}
	return SetStatus(s, "Publication moved to drafts", deps)
}

// applyUpdated reconciles an edited publication with every place it is shown.
func applyUpdated(s *state.ModelState, p publication.Publication, deps Deps) {
	v := s.Dashboard
	if matches(p, v.Filter()) {
		v.Pages.Replace(p)
	} else {
		v.Pages.Remove(p.ID)
	}
	s.Selection.Refresh(p)
	if s.Detail.Publication.ID == p.ID {
		s.Detail.Publication = p
		if s.Session == state.DetailView {
			refreshDetailViewport(s, deps)
		}
	}
}

// matches reports whether p belongs in a dashboard list filtered by f.
func matches(p publication.Publication, f publication.Filter) bool {
	if f.ShowDeleted {
		return false
	}
	if f.Status != "" && f.Status != p.Status {
		return false
	}
	return containsFold(p.Title, f.Search) || containsFold(p.Content, f.Search)
}

func logout(s *state.ModelState, deps Deps) tea.Cmd {
	err := deps.Auth.Logout()
	clearUser(s)
	cmd := enterPublic(s)
	if err != nil {
		return tea.Batch(cmd, SetStatus(s, deps.describe(err, "Failed to log out"), deps))
	}
	return tea.Batch(cmd, SetStatus(s, "Logged out", deps))
}

// clearUser forgets the session and everything loaded with it.
func clearUser(s *state.ModelState) {
	s.User = auth.Session{}
	s.Selection.Clear()
	s.Dashboard.Pages.Clear()
}

// HandleSessionExpired sends the user to the login form, unless already there.
func HandleSessionExpired(s *state.ModelState, deps Deps) tea.Cmd {
	s.WatchingExpiry = false
	clearUser(s)
	if s.Session == state.LoginView {
		return nil
	}
	openLogin(s, "Your session has expired. Please log in again.")
	return SetStatus(s, "Session expired", deps)
}

func countNoun(n int) string {
	if n == 1 {
		return "1 publication"
	}
	return fmt.Sprintf("%d publications", n)
}
