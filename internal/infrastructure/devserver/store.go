package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/domain/publication"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tokens (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS publications (
	id         TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL REFERENCES users(id),
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	deleted_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_publications_author ON publications(author_id, created_at);
`

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Query selects a page of publications.
type Query struct {
	Search  string
	Status  publication.Status
	Page    int
	Limit   int
	Deleted bool
}

func (q Query) normalized() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	return q
}

// Store is the sqlite backing of the development server.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens (and migrates) the database at path. ":memory:" gives a
// throwaway database.
func OpenStore(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writes and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Signup creates a user and returns a fresh session.
func (s *Store) Signup(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return auth.Session{}, fmt.Errorf("hash password: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, creds.Name, strings.ToLower(creds.Email), string(hash), s.stamp())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return auth.Session{}, ErrConflict
		}
		return auth.Session{}, fmt.Errorf("create user: %w", err)
	}
	return s.issue(ctx, id)
}

// Login checks credentials and returns a fresh session.
func (s *Store) Login(ctx context.Context, email, password string) (auth.Session, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = ?`, strings.ToLower(email)).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return auth.Session{}, ErrInvalidCredentials
	}
	return s.issue(ctx, id)
}

// UserForToken resolves a bearer token to its user id.
func (s *Store) UserForToken(ctx context.Context, token string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM tokens WHERE token = ?`, token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

// RevokeTokens drops every token of a user.
func (s *Store) RevokeTokens(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE user_id = ?`, userID)
	return err
}

func (s *Store) issue(ctx context.Context, userID string) (auth.Session, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (token, user_id, created_at) VALUES (?, ?, ?)`, token, userID, s.stamp())
	if err != nil {
		return auth.Session{}, fmt.Errorf("issue token: %w", err)
	}
	return auth.Session{UserID: userID, Token: token}, nil
}

// List returns one page of an author's publications, newest first. Deleted
// selects the trash instead of the live items.
func (s *Store) List(ctx context.Context, authorID string, q Query) ([]publication.Publication, int, error) {
	where := []string{"author_id = ?"}
	args := []any{authorID}
	if q.Deleted {
		where = append(where, "deleted_at IS NOT NULL")
	} else {
		where = append(where, "deleted_at IS NULL")
	}
	return s.page(ctx, where, args, q)
}

// ListPublic returns one page of published, live publications.
func (s *Store) ListPublic(ctx context.Context, q Query) ([]publication.Publication, int, error) {
	q.Status = publication.StatusPublished
	where := []string{"deleted_at IS NULL"}
	return s.page(ctx, where, nil, q)
}

func (s *Store) page(ctx context.Context, where []string, args []any, q Query) ([]publication.Publication, int, error) {
	q = q.normalized()
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM publications WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count publications: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, status, created_at, updated_at FROM publications WHERE `+clause+
			` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		append(args, q.Limit, (q.Page-1)*q.Limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list publications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []publication.Publication{}
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// Get returns one of the author's live publications.
func (s *Store) Get(ctx context.Context, authorID, id string) (publication.Publication, error) {
	return s.one(ctx, `author_id = ? AND id = ? AND deleted_at IS NULL`, authorID, id)
}

// GetPublic returns a published, live publication.
func (s *Store) GetPublic(ctx context.Context, id string) (publication.Publication, error) {
	return s.one(ctx, `id = ? AND status = ? AND deleted_at IS NULL`, id, string(publication.StatusPublished))
}

func (s *Store) one(ctx context.Context, clause string, args ...any) (publication.Publication, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, status, created_at, updated_at FROM publications WHERE `+clause, args...)
	p, err := scanPublication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return publication.Publication{}, ErrNotFound
	}
	return p, err
}

// Create stores a validated draft.
func (s *Store) Create(ctx context.Context, authorID string, draft publication.Draft) (publication.Publication, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return publication.Publication{}, err
	}
	now := s.now().UTC()
	p := publication.Publication{
		ID:        uuid.NewString(),
		Title:     draft.Title,
		Content:   draft.Content,
		Status:    draft.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO publications (id, author_id, title, content, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, authorID, p.Title, p.Content, string(p.Status), now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return publication.Publication{}, fmt.Errorf("create publication: %w", err)
	}
	return p, nil
}

// Update applies patch to a live publication and validates the result.
func (s *Store) Update(ctx context.Context, authorID, id string, patch publication.Patch) (publication.Publication, error) {
	p, err := s.Get(ctx, authorID, id)
	if err != nil {
		return publication.Publication{}, err
	}
	draft := publication.DraftOf(p)
	if patch.Title != nil {
		draft.Title = *patch.Title
	}
	if patch.Content != nil {
		draft.Content = *patch.Content
	}
	if patch.Status != nil {
		draft.Status = *patch.Status
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return publication.Publication{}, err
	}

	p.Title, p.Content, p.Status = draft.Title, draft.Content, draft.Status
	p.UpdatedAt = s.now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE publications SET title = ?, content = ?, status = ?, updated_at = ? WHERE id = ? AND author_id = ?`,
		p.Title, p.Content, string(p.Status), p.UpdatedAt.Format(timeLayout), id, authorID)
	if err != nil {
		return publication.Publication{}, fmt.Errorf("update publication: %w", err)
	}
	return p, nil
}

// SetDeleted moves publications into (deleted) or out of the trash and
// returns how many changed.
func (s *Store) SetDeleted(ctx context.Context, authorID string, ids []string, deleted bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+2)

	var query string
	if deleted {
		query = `UPDATE publications SET deleted_at = ? WHERE author_id = ? AND deleted_at IS NULL AND id IN (` + placeholders + `)`
		args = append(args, s.stamp(), authorID)
	} else {
		query = `UPDATE publications SET deleted_at = NULL WHERE author_id = ? AND deleted_at IS NOT NULL AND id IN (` + placeholders + `)`
		args = append(args, authorID)
	}
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update publications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPublication(row scanner) (publication.Publication, error) {
	var p publication.Publication
	var status, created, updated string
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &status, &created, &updated); err != nil {
		return publication.Publication{}, err
	}
	p.Status = publication.Status(status)
	p.CreatedAt, _ = time.Parse(timeLayout, created)
	p.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return p, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
