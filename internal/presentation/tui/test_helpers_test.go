package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"
	"github.com/tesso57/pubdesk/internal/application/settings"
	"github.com/tesso57/pubdesk/internal/application/usecase"
	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/domain/publication"
)

var errNotFound = errors.New("not found")

type stubPublicationRepo struct {
	mock.Mock
	items   []publication.Publication
	deleted map[string]bool
	nextID  int
}

func newStubRepo(items ...publication.Publication) *stubPublicationRepo {
	return &stubPublicationRepo{items: items, deleted: map[string]bool{}}
}

func (s *stubPublicationRepo) page(items []publication.Publication, params publication.ListParams) []publication.Publication {
	start := (params.Page - 1) * params.Limit
	if start < 0 || start >= len(items) {
		return nil
	}
	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return append([]publication.Publication(nil), items[start:end]...)
}

func (s *stubPublicationRepo) matching(params publication.ListParams, public bool) []publication.Publication {
	var out []publication.Publication
	for _, p := range s.items {
		if s.deleted[p.ID] != params.ShowDeleted {
			continue
		}
		if public && p.Status != publication.StatusPublished {
			continue
		}
		if params.Status != "" && p.Status != params.Status {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *stubPublicationRepo) List(ctx context.Context, params publication.ListParams) ([]publication.Publication, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, params)
		items, _ := args.Get(0).([]publication.Publication)
		return items, args.Error(1)
	}
	return s.page(s.matching(params, false), params), nil
}

func (s *stubPublicationRepo) ListPublic(ctx context.Context, params publication.ListParams) ([]publication.Publication, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, params)
		items, _ := args.Get(0).([]publication.Publication)
		return items, args.Error(1)
	}
	return s.page(s.matching(params, true), params), nil
}

func (s *stubPublicationRepo) Get(ctx context.Context, id string) (publication.Publication, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, id)
		p, _ := args.Get(0).(publication.Publication)
		return p, args.Error(1)
	}
	for _, p := range s.items {
		if p.ID == id {
			return p, nil
		}
	}
	return publication.Publication{}, errNotFound
}

func (s *stubPublicationRepo) GetPublic(ctx context.Context, id string) (publication.Publication, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, id)
		p, _ := args.Get(0).(publication.Publication)
		return p, args.Error(1)
	}
	p, err := s.Get(ctx, id)
	if err != nil || p.Status != publication.StatusPublished {
		return publication.Publication{}, errNotFound
	}
	return p, nil
}

func (s *stubPublicationRepo) Create(ctx context.Context, draft publication.Draft) (publication.Publication, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, draft)
		p, _ := args.Get(0).(publication.Publication)
		return p, args.Error(1)
	}
	s.nextID++
	now := time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)
	p := publication.Publication{
		ID:        fmt.Sprintf("new-%d", s.nextID),
		Title:     draft.Title,
		Content:   draft.Content,
		Status:    draft.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.items = append([]publication.Publication{p}, s.items...)
	return p, nil
}

func (s *stubPublicationRepo) Update(ctx context.Context, id string, patch publication.Patch) (publication.Publication, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, id, patch)
		p, _ := args.Get(0).(publication.Publication)
		return p, args.Error(1)
	}
	for i, p := range s.items {
		if p.ID != id {
			continue
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Content != nil {
			p.Content = *patch.Content
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		s.items[i] = p
		return p, nil
	}
	return publication.Publication{}, errNotFound
}

func (s *stubPublicationRepo) Delete(ctx context.Context, id string) error {
	if len(s.ExpectedCalls) > 0 {
		return s.Called(ctx, id).Error(0)
	}
	s.deleted[id] = true
	return nil
}

func (s *stubPublicationRepo) UndoDelete(ctx context.Context, id string) error {
	if len(s.ExpectedCalls) > 0 {
		return s.Called(ctx, id).Error(0)
	}
	delete(s.deleted, id)
	return nil
}

func (s *stubPublicationRepo) BulkDelete(ctx context.Context, ids []string) (publication.BulkResult, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, ids)
		r, _ := args.Get(0).(publication.BulkResult)
		return r, args.Error(1)
	}
	for _, id := range ids {
		s.deleted[id] = true
	}
	return publication.BulkResult{Count: len(ids)}, nil
}

func (s *stubPublicationRepo) BulkUndo(ctx context.Context, ids []string) (publication.BulkResult, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, ids)
		r, _ := args.Get(0).(publication.BulkResult)
		return r, args.Error(1)
	}
	for _, id := range ids {
		delete(s.deleted, id)
	}
	return publication.BulkResult{Count: len(ids)}, nil
}

type stubSessionRepo struct {
	mock.Mock
	session auth.Session
}

func (s *stubSessionRepo) Load() (auth.Session, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called()
		session, _ := args.Get(0).(auth.Session)
		return session, args.Error(1)
	}
	return s.session, nil
}

func (s *stubSessionRepo) Save(session auth.Session) error {
	if len(s.ExpectedCalls) > 0 {
		return s.Called(session).Error(0)
	}
	s.session = session
	return nil
}

func (s *stubSessionRepo) Clear() error {
	if len(s.ExpectedCalls) > 0 {
		return s.Called().Error(0)
	}
	s.session = auth.Session{}
	return nil
}

type stubAuthGateway struct {
	mock.Mock
}

func (s *stubAuthGateway) Login(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, creds)
		session, _ := args.Get(0).(auth.Session)
		return session, args.Error(1)
	}
	return auth.Session{UserID: "user-1", Token: "token-" + creds.Email}, nil
}

func (s *stubAuthGateway) Signup(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	if len(s.ExpectedCalls) > 0 {
		args := s.Called(ctx, creds)
		session, _ := args.Get(0).(auth.Session)
		return session, args.Error(1)
	}
	return auth.Session{UserID: "user-2", Token: "token-" + creds.Email}, nil
}

func testSettings() settings.Settings {
	return settings.Settings{
		List: settings.ListConfig{PageSize: 2, Margin: 1, PreserveOnReset: true},
		KeyMap: settings.KeyMapConfig{
			Up:           "k,up",
			Down:         "j,down",
			UpPage:       "ctrl+u,pgup",
			DownPage:     "ctrl+d,pgdn",
			Top:          "g",
			Bottom:       "G",
			Open:         "enter",
			Back:         "esc",
			Quit:         "q",
			SwitchView:   "tab",
			Search:       "/",
			StatusFilter: "f",
			Trash:        "t",
			Select:       "space",
			New:          "n",
			Edit:         "e",
			Delete:       "x",
			ToggleStatus: "p",
			Retry:        "r",
			Logout:       "O",
		},
		Theme: settings.ThemeConfig{Accent: "62", Muted: "244", Error: "160", Markdown: "notty"},
	}
}

type testEnv struct {
	repo     *stubPublicationRepo
	sessions *stubSessionRepo
	gateway  *stubAuthGateway
	watch    *usecase.SessionWatch
}

func newTestModel(env *testEnv) *Model {
	if env.repo == nil {
		env.repo = newStubRepo()
	}
	if env.sessions == nil {
		env.sessions = &stubSessionRepo{}
	}
	if env.gateway == nil {
		env.gateway = &stubAuthGateway{}
	}
	env.watch = usecase.NewSessionWatch(env.sessions)
	return NewModel(testSettings(), Services{
		Publications: usecase.NewPublicationService(env.repo),
		Auth:         usecase.NewAuthService(env.gateway, env.sessions, env.watch),
		Watch:        env.watch,
	})
}

// drain runs cmd and feeds every message it produces back into the model.
// Commands that do not finish promptly (ticks, the expiry wait) are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatal("drain did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg, ok := runCmd(next)
		if !ok || msg == nil {
			continue
		}
		if batch, isBatch := msg.(tea.BatchMsg); isBatch {
			queue = append(queue, batch...)
			continue
		}
		seen = append(seen, msg)
		if _, quit := msg.(tea.QuitMsg); quit {
			continue
		}
		_, follow := m.Update(msg)
		queue = append(queue, follow)
	}
	return seen
}

func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()
	select {
	case msg := <-out:
		return msg, true
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

func start(t *testing.T, m *Model) {
	t.Helper()
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drain(t, m, tea.Batch(m.Init(), cmd))
}

func press(t *testing.T, m *Model, msg tea.KeyMsg) []tea.Msg {
	t.Helper()
	_, cmd := m.Update(msg)
	return drain(t, m, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m *Model, text string) {
	t.Helper()
	for _, r := range text {
		press(t, m, runes(string(r)))
	}
}

func pub(id, title string, status publication.Status) publication.Publication {
	return publication.Publication{
		ID:        id,
		Title:     title,
		Content:   "Content of " + title,
		Status:    status,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ids(items []publication.Publication) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}
