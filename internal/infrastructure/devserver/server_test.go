package devserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesso57/pubdesk/internal/application/usecase"
	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/domain/publication"
	"github.com/tesso57/pubdesk/internal/infrastructure/api"
)

type memoryToken struct{ token string }

func (m *memoryToken) Token() (string, error) { return m.token, nil }

type harness struct {
	store  *Store
	server *httptest.Server
	tokens *memoryToken
	client *api.Client
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	// Stable, strictly increasing timestamps keep ordering deterministic.
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	server := httptest.NewServer(New(store, opts).Handler())
	t.Cleanup(server.Close)

	tokens := &memoryToken{}
	client, err := api.NewClient(server.URL, api.WithTokenSource(tokens))
	require.NoError(t, err)
	return &harness{store: store, server: server, tokens: tokens, client: client}
}

func (h *harness) signup(t *testing.T, email string) auth.Session {
	t.Helper()
	session, err := h.client.Signup(context.Background(), auth.Credentials{Name: "Ada", Email: email, Password: "secret1"})
	require.NoError(t, err)
	h.tokens.token = session.Token
	return session
}

func (h *harness) create(t *testing.T, title string, status publication.Status) publication.Publication {
	t.Helper()
	p, err := h.client.Create(context.Background(), publication.Draft{
		Title:   title,
		Content: "Content for " + title,
		Status:  status,
	})
	require.NoError(t, err)
	return p
}

func titles(items []publication.Publication) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Title)
	}
	return out
}

func TestSignupAndLogin(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	session := h.signup(t, "Ada@Example.com")
	assert.NotEmpty(t, session.UserID)
	assert.NotEmpty(t, session.Token)

	_, err := h.client.Signup(ctx, auth.Credentials{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	login, err := h.client.Login(ctx, auth.Credentials{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, session.UserID, login.UserID)

	_, err = h.client.Login(ctx, auth.Credentials{Email: "ada@example.com", Password: "wrong1"})
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "Invalid email or password", api.Message(err, ""))
}

func TestPublicationsRequireToken(t *testing.T) {
	h := newHarness(t, Options{})
	_, err := h.client.List(context.Background(), publication.ListParams{Page: 1})
	require.ErrorIs(t, err, api.ErrUnauthorized)

	h.tokens.token = "not-a-token"
	_, err = h.client.List(context.Background(), publication.ListParams{Page: 1})
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	h := newHarness(t, Options{})
	h.signup(t, "ada@example.com")
	for i := 1; i <= 12; i++ {
		h.create(t, fmt.Sprintf("Post %02d", i), publication.StatusDraft)
	}
	ctx := context.Background()

	page1, err := h.client.List(ctx, publication.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page1, 10)
	assert.Equal(t, "Post 12", page1[0].Title)

	page2, err := h.client.List(ctx, publication.ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Post 02", "Post 01"}, titles(page2))

	page3, err := h.client.List(ctx, publication.ListParams{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestListFiltersBySearchAndStatus(t *testing.T) {
	h := newHarness(t, Options{})
	h.signup(t, "ada@example.com")
	h.create(t, "Go tips", publication.StatusPublished)
	h.create(t, "Cooking notes", publication.StatusDraft)
	h.create(t, "More GO", publication.StatusDraft)
	h.create(t, "100% done", publication.StatusDraft)
	ctx := context.Background()

	got, err := h.client.List(ctx, publication.ListParams{Search: "go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"More GO", "Go tips"}, titles(got))

	got, err = h.client.List(ctx, publication.ListParams{Status: publication.StatusDraft, Search: "go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"More GO"}, titles(got))

	got, err = h.client.List(ctx, publication.ListParams{Search: "%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% done"}, titles(got))
}

func TestSoftDeleteAndUndo(t *testing.T) {
	h := newHarness(t, Options{})
	h.signup(t, "ada@example.com")
	a := h.create(t, "First post", publication.StatusPublished)
	b := h.create(t, "Second post", publication.StatusDraft)
	c := h.create(t, "Third post", publication.StatusDraft)
	ctx := context.Background()

	require.NoError(t, h.client.Delete(ctx, a.ID))
	err := h.client.Delete(ctx, a.ID)
	require.ErrorIs(t, err, api.ErrNotFound)

	res, err := h.client.BulkDelete(ctx, []string{b.ID, c.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	live, err := h.client.List(ctx, publication.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, live)

	trash, err := h.client.List(ctx, publication.ListParams{ShowDeleted: true})
	require.NoError(t, err)
	assert.Len(t, trash, 3)

	require.NoError(t, h.client.UndoDelete(ctx, a.ID))
	res, err = h.client.BulkUndo(ctx, []string{b.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	live, err = h.client.List(ctx, publication.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Second post", "First post"}, titles(live))
}

func TestUpdateValidatesAndScopesToAuthor(t *testing.T) {
	h := newHarness(t, Options{})
	h.signup(t, "ada@example.com")
	p := h.create(t, "Original", publication.StatusDraft)
	ctx := context.Background()

	updated, err := h.client.Update(ctx, p.ID, publication.StatusPatch(publication.StatusPublished))
	require.NoError(t, err)
	assert.Equal(t, publication.StatusPublished, updated.Status)
	assert.Equal(t, "Original", updated.Title)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	short := "ab"
	_, err = h.client.Update(ctx, p.ID, publication.Patch{Title: &short})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Title must be at least 3 characters", apiErr.Message)

	h.signup(t, "grace@example.com")
	_, err = h.client.Get(ctx, p.ID)
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestPublicListing(t *testing.T) {
	h := newHarness(t, Options{})
	h.signup(t, "ada@example.com")
	pub := h.create(t, "Visible", publication.StatusPublished)
	hidden := h.create(t, "Hidden draft", publication.StatusDraft)
	gone := h.create(t, "Deleted post", publication.StatusPublished)
	ctx := context.Background()
	require.NoError(t, h.client.Delete(ctx, gone.ID))

	h.tokens.token = ""
	got, err := h.client.ListPublic(ctx, publication.ListParams{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Visible"}, titles(got))

	detail, err := h.client.GetPublic(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Content for Visible", detail.Content)

	_, err = h.client.GetPublic(ctx, hidden.ID)
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestServiceDrivesServerEndToEnd(t *testing.T) {
	h := newHarness(t, Options{})
	h.signup(t, "ada@example.com")
	svc := usecase.NewPublicationService(h.client)
	ctx := context.Background()

	created, err := svc.Save(ctx, nil, publication.Draft{Title: "  Service post ", Content: "Written through the service", Status: publication.StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, "Service post", created.Title)

	items, err := svc.Page(ctx, publication.Filter{Search: "service"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	res, err := svc.RemoveMany(ctx, []string{created.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	trash, err := svc.Page(ctx, publication.Filter{ShowDeleted: true}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, trash, 1)
}

func TestQueryValidation(t *testing.T) {
	h := newHarness(t, Options{})
	for _, query := range []string{"status=ARCHIVED", "page=0", "limit=abc"} {
		resp, err := http.Get(h.server.URL + "/api/public?" + query)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}
}

func TestLimitIsCapped(t *testing.T) {
	q := Query{Limit: 1000}.normalized()
	assert.Equal(t, MaxLimit, q.Limit)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLimit, Query{}.normalized().Limit)
}

func TestHealthMetricsAndRequestLog(t *testing.T) {
	var logs bytes.Buffer
	h := newHarness(t, Options{LogWriter: &logs, LogJSON: true})

	resp, err := http.Get(h.server.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(h.server.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `pubdesk_http_requests_total{method="GET",route="/health",status="200"}`)

	assert.True(t, strings.Contains(logs.String(), "/health"), "request log missing: %s", logs.String())
}

func TestUnknownRouteUsesMessageBody(t *testing.T) {
	h := newHarness(t, Options{})
	resp, err := http.Get(h.server.URL + "/api/nope")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Route not found"}`, string(body))
}
