package update

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"
	"github.com/tesso57/pubdesk/internal/application/usecase"
	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/domain/publication"
	"github.com/tesso57/pubdesk/internal/presentation/tui/state"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) List(ctx context.Context, params publication.ListParams) ([]publication.Publication, error) {
	args := m.Called(ctx, params)
	items, _ := args.Get(0).([]publication.Publication)
	return items, args.Error(1)
}

func (m *mockRepo) ListPublic(ctx context.Context, params publication.ListParams) ([]publication.Publication, error) {
	args := m.Called(ctx, params)
	items, _ := args.Get(0).([]publication.Publication)
	return items, args.Error(1)
}

func (m *mockRepo) Get(ctx context.Context, id string) (publication.Publication, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(publication.Publication)
	return p, args.Error(1)
}

func (m *mockRepo) GetPublic(ctx context.Context, id string) (publication.Publication, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(publication.Publication)
	return p, args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, draft publication.Draft) (publication.Publication, error) {
	args := m.Called(ctx, draft)
	p, _ := args.Get(0).(publication.Publication)
	return p, args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, id string, patch publication.Patch) (publication.Publication, error) {
	args := m.Called(ctx, id, patch)
	p, _ := args.Get(0).(publication.Publication)
	return p, args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) UndoDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) BulkDelete(ctx context.Context, ids []string) (publication.BulkResult, error) {
	args := m.Called(ctx, ids)
	r, _ := args.Get(0).(publication.BulkResult)
	return r, args.Error(1)
}

func (m *mockRepo) BulkUndo(ctx context.Context, ids []string) (publication.BulkResult, error) {
	args := m.Called(ctx, ids)
	r, _ := args.Get(0).(publication.BulkResult)
	return r, args.Error(1)
}

func item(id, title string, status publication.Status) publication.Publication {
	return publication.Publication{ID: id, Title: title, Content: "body of " + title, Status: status}
}

func idsOf(items []publication.Publication) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestSearchTick_DropsStaleSequence(t *testing.T) {
	s := newTestState(nil)
	s.Session = state.PublicView
	s.Searching = true
	s.Public.Search.Focus()

	for _, r := range "go" {
		handleSearchKey(s, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}, Deps{})
	}
	if s.Public.SearchSeq != 2 {
		t.Fatalf("SearchSeq = %d, want 2", s.Public.SearchSeq)
	}

	if cmd := HandleSearchTick(s, SearchTickMsg{View: state.PublicView, Seq: 1}); cmd != nil {
		t.Error("stale tick should not reload")
	}
	if got := s.Public.Filter().Search; got != "" {
		t.Errorf("stale tick committed %q", got)
	}

	if cmd := HandleSearchTick(s, SearchTickMsg{View: state.PublicView, Seq: 2}); cmd == nil {
		t.Error("latest tick should reload")
	}
	if got := s.Public.Filter().Search; got != "go" {
		t.Errorf("committed search = %q, want %q", got, "go")
	}
}

func TestSearchKey_EnterCommitsAndInvalidatesPendingTick(t *testing.T) {
	s := newTestState(nil)
	s.Session = state.PublicView
	s.Searching = true
	s.Public.Search.Focus()

	handleSearchKey(s, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, Deps{})
	pending := s.Public.SearchSeq
	handleSearchKey(s, tea.KeyMsg{Type: tea.KeyEnter}, Deps{})

	if s.Searching {
		t.Error("enter should leave the search box")
	}
	if s.Public.Filter().Search != "x" {
		t.Errorf("enter should commit, got %q", s.Public.Filter().Search)
	}
	if cmd := HandleSearchTick(s, SearchTickMsg{View: state.PublicView, Seq: pending}); cmd != nil {
		t.Error("tick scheduled before enter should be ignored")
	}
}

func TestCommitSearch_DashboardNeedsSession(t *testing.T) {
	s := newTestState(nil)
	s.Dashboard.Search.SetValue("draft")
	if cmd := commitSearch(s, s.Dashboard); cmd != nil {
		t.Error("expected no reload while signed out")
	}
	if s.Dashboard.Filter().Search != "" {
		t.Error("expected filter to stay unchanged while signed out")
	}

	s.User = auth.Session{UserID: "u", Token: "t"}
	if cmd := commitSearch(s, s.Dashboard); cmd == nil {
		t.Error("expected reload once signed in")
	}
}

func TestReload_UserChangeResetsDashboard(t *testing.T) {
	s := newTestState(nil)
	s.User = auth.Session{UserID: "a", Token: "t"}
	if cmd := reload(s, s.Dashboard); cmd == nil {
		t.Fatal("first reload should always fire")
	}
	if cmd := reload(s, s.Dashboard); cmd != nil {
		t.Error("same filter and user should not reload")
	}
	s.User = auth.Session{UserID: "b", Token: "t"}
	if cmd := reload(s, s.Dashboard); cmd == nil {
		t.Error("a different user should reload")
	}
}

func TestMatches(t *testing.T) {
	p := item("1", "Go generics", publication.StatusDraft)
	tests := []struct {
		name   string
		filter publication.Filter
		want   bool
	}{
		{name: "empty filter", filter: publication.Filter{}, want: true},
		{name: "status match", filter: publication.Filter{Status: publication.StatusDraft}, want: true},
		{name: "status mismatch", filter: publication.Filter{Status: publication.StatusPublished}, want: false},
		{name: "search in title", filter: publication.Filter{Search: "GENERICS"}, want: true},
		{name: "search in content", filter: publication.Filter{Search: "body"}, want: true},
		{name: "search miss", filter: publication.Filter{Search: "rust"}, want: false},
		{name: "trash", filter: publication.Filter{ShowDeleted: true}, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := matches(p, tc.filter); got != tc.want {
				t.Errorf("matches() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyUpdated_ReplacesOrRemoves(t *testing.T) {
	s := newTestState(nil)
	s.Dashboard.SetFilter(publication.Filter{Status: publication.StatusDraft})
	for _, p := range []publication.Publication{item("2", "Two", publication.StatusDraft), item("1", "One", publication.StatusDraft)} {
		s.Dashboard.Pages.Prepend(p)
	}

	renamed := item("1", "One renamed", publication.StatusDraft)
	applyUpdated(s, renamed, Deps{})
	if got := s.Dashboard.Pages.Items()[0].Title; got != "One renamed" {
		t.Errorf("expected in-place replace, got %q", got)
	}

	published := item("2", "Two", publication.StatusPublished)
	applyUpdated(s, published, Deps{})
	if got := idsOf(s.Dashboard.Pages.Items()); len(got) != 1 || got[0] != "1" {
		t.Errorf("expected item leaving the filter to be removed, got %v", got)
	}
}

func TestHandleRemoved_ErrorKeepsItems(t *testing.T) {
	s := newTestState(nil)
	s.Dashboard.Pages.Prepend(item("1", "One", publication.StatusDraft))

	HandleRemoved(s, RemovedMsg{IDs: []string{"1"}, Err: errors.New("boom")}, Deps{})
	if len(s.Dashboard.Pages.Items()) != 1 {
		t.Error("failed delete should keep the item")
	}
	if s.StatusMessage != "boom" {
		t.Errorf("status = %q, want %q", s.StatusMessage, "boom")
	}

	HandleRemoved(s, RemovedMsg{IDs: []string{"1"}, Restore: true, Count: 1}, Deps{})
	if len(s.Dashboard.Pages.Items()) != 0 {
		t.Error("restored item should leave the trash list")
	}
	if s.StatusMessage != "Restored 1 publication" {
		t.Errorf("status = %q", s.StatusMessage)
	}
}

func TestHandleClearStatus_KeepsNewerMessage(t *testing.T) {
	s := newTestState(nil)
	SetStatus(s, "first", Deps{})
	first := s.StatusSeq
	SetStatus(s, "second", Deps{})

	HandleClearStatus(s, ClearStatusMsg{Seq: first})
	if s.StatusMessage != "second" {
		t.Errorf("older clear removed a newer message: %q", s.StatusMessage)
	}
	HandleClearStatus(s, ClearStatusMsg{Seq: s.StatusSeq})
	if s.StatusMessage != "" {
		t.Errorf("expected message cleared, got %q", s.StatusMessage)
	}
}

func TestHandleSessionExpired(t *testing.T) {
	s := newTestState(nil)
	s.User = auth.Session{UserID: "u", Token: "t"}
	s.Session = state.DashboardView
	s.WatchingExpiry = true
	s.Dashboard.Pages.Prepend(item("1", "One", publication.StatusDraft))
	s.Selection.Toggle(item("1", "One", publication.StatusDraft))

	HandleSessionExpired(s, Deps{})

	if s.Session != state.LoginView {
		t.Fatalf("session = %v, want login", s.Session)
	}
	if s.LoggedIn() || s.WatchingExpiry {
		t.Error("expected user and watch flag to be cleared")
	}
	if len(s.Dashboard.Pages.Items()) != 0 || s.Selection.Len() != 0 {
		t.Error("expected dashboard data to be cleared")
	}
	if s.AfterLogin != state.DashboardView {
		t.Error("expected login to return to the dashboard")
	}

	s.Auth.Notice = "kept"
	if cmd := HandleSessionExpired(s, Deps{}); cmd != nil {
		t.Error("expected expiry on the login view to be ignored")
	}
	if s.Auth.Notice != "kept" {
		t.Error("expected login form to be left alone")
	}
}

func TestHandleSessionExpired_SameUserReloadsDashboard(t *testing.T) {
	s := newTestState(nil)
	s.User = auth.Session{UserID: "u", Token: "t"}
	if cmd := reload(s, s.Dashboard); cmd == nil {
		t.Fatal("first reload should always fire")
	}

	HandleSessionExpired(s, Deps{})
	s.User = auth.Session{UserID: "u", Token: "t2"}
	if cmd := reload(s, s.Dashboard); cmd == nil {
		t.Error("logging in again as the same user should reload the dashboard")
	}
}

func TestRemoveCmd_SingleAndBulk(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Delete", mock.Anything, "1").Return(nil).Once()
	repo.On("BulkUndo", mock.Anything, []string{"1", "2"}).Return(publication.BulkResult{Count: 2}, nil).Once()
	svc := usecase.NewPublicationService(repo)

	msg := RemoveCmd(svc, []string{"1"}, false, false)().(RemovedMsg)
	if msg.Err != nil || msg.Count != 1 {
		t.Errorf("single delete = %+v", msg)
	}

	msg = RemoveCmd(svc, []string{"1", "2"}, true, true)().(RemovedMsg)
	if msg.Err != nil || msg.Count != 2 || !msg.Restore {
		t.Errorf("bulk restore = %+v", msg)
	}
	repo.AssertExpectations(t)
}

func TestSaveCmd_CreateOrUpdate(t *testing.T) {
	repo := &mockRepo{}
	draft := publication.Draft{Title: "Hello", Content: "Some content", Status: publication.StatusDraft}
	created := item("9", "Hello", publication.StatusDraft)
	repo.On("Create", mock.Anything, draft).Return(created, nil).Once()
	repo.On("Update", mock.Anything, "9", draft.Patch()).Return(created, nil).Once()
	svc := usecase.NewPublicationService(repo)

	msg := SaveCmd(svc, nil, draft)().(SavedMsg)
	if !msg.Created || msg.Publication.ID != "9" {
		t.Errorf("create = %+v", msg)
	}
	msg = SaveCmd(svc, &created, draft)().(SavedMsg)
	if msg.Created {
		t.Errorf("update reported as create: %+v", msg)
	}
	repo.AssertExpectations(t)
}

func TestSpinner_OnlyWhileBusy(t *testing.T) {
	s := newTestState(nil)
	s.Session = state.PublicView
	if cmd := StartSpinner(s); cmd != nil {
		t.Error("idle state should not tick")
	}

	s.Detail.Loading = true
	if cmd := StartSpinner(s); cmd == nil {
		t.Fatal("busy state should start the spinner")
	}
	if cmd := StartSpinner(s); cmd != nil {
		t.Error("a second tick must not be scheduled")
	}

	s.Detail.Loading = false
	if cmd := HandleSpinnerTick(s, s.Spinner.Tick().(spinner.TickMsg)); cmd != nil {
		t.Error("tick after work finished should stop the chain")
	}
	if s.SpinnerActive {
		t.Error("expected spinner flag cleared")
	}
}

func TestSyncLists_FiresSentinelNearEnd(t *testing.T) {
	f := &fetcher{pages: map[int][]publication.Publication{
		1: {item("1", "One", publication.StatusPublished), item("2", "Two", publication.StatusPublished)},
	}}
	s := newTestState(f)
	s.Session = state.PublicView

	cmd := SyncLists(s)
	if cmd == nil {
		t.Fatal("empty list should request the first page")
	}
	s.Public.Pages.Update(cmd())
	SyncLists(s)

	if got := len(s.Public.List.Items()); got != 2 {
		t.Errorf("list rows = %d, want 2", got)
	}
	if len(f.calls) != 1 || f.calls[0] != 1 {
		t.Errorf("calls = %v, want [1]", f.calls)
	}
}
