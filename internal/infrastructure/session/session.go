// Package session persists the signed-in session in a local sqlite file.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tesso57/pubdesk/internal/domain/auth"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	user_id  TEXT NOT NULL,
	token    TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL
)`

// Store holds at most one session. The file is opened per operation so the
// CLI and a running TUI can share it.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewStore creates a store backed by the sqlite file at path.
func NewStore(path string) *Store {
	return new(Store{
		path: path,
		now:  time.Now,
	})
}

// Load returns the stored session, or the zero session when there is none.
func (s *Store) Load() (auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session auth.Session
	if !s.exists() {
		return session, nil
	}
	db, err := s.open()
	if err != nil {
		return session, err
	}
	defer func() { _ = db.Close() }()

	err = db.QueryRowContext(context.Background(),
		`SELECT user_id, token FROM session WHERE id = 1`).Scan(&session.UserID, &session.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, nil
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// Save replaces the stored session.
func (s *Store) Save(session auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	db, err := s.open()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(context.Background(), `
		INSERT INTO session (id, user_id, token, saved_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, token = excluded.token, saved_at = excluded.saved_at`,
		session.UserID, session.Token, s.now().UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists() {
		return nil
	}
	db, err := s.open()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(context.Background(), `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, empty when signed out.
func (s *Store) Token() (string, error) {
	session, err := s.Load()
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

func (s *Store) exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+s.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}
	return db, nil
}
