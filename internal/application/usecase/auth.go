package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/logging"
)

// AuthGateway abstracts the authentication endpoints.
type AuthGateway interface {
	Login(ctx context.Context, creds auth.Credentials) (auth.Session, error)
	Signup(ctx context.Context, creds auth.Credentials) (auth.Session, error)
}

// SessionRepository abstracts persistence of the current session.
type SessionRepository interface {
	Load() (auth.Session, error)
	Save(session auth.Session) error
	Clear() error
}

// AuthService signs users in and out.
type AuthService struct {
	Gateway  AuthGateway
	Sessions SessionRepository
	Watch    *SessionWatch
}

// NewAuthService constructs an AuthService.
func NewAuthService(gateway AuthGateway, sessions SessionRepository, watch *SessionWatch) AuthService {
	return AuthService{Gateway: gateway, Sessions: sessions, Watch: watch}
}

// Login validates creds, signs in and stores the session.
func (s AuthService) Login(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	creds = creds.Normalize()
	if err := auth.ValidateLogin(creds); err != nil {
		return auth.Session{}, err
	}
	session, err := s.Gateway.Login(ctx, auth.Credentials{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return auth.Session{}, err
	}
	return session, s.store(session)
}

// Signup validates creds, creates the account and stores the session.
func (s AuthService) Signup(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	creds = creds.Normalize()
	if err := auth.ValidateSignup(creds); err != nil {
		return auth.Session{}, err
	}
	session, err := s.Gateway.Signup(ctx, creds)
	if err != nil {
		return auth.Session{}, err
	}
	return session, s.store(session)
}

// Logout forgets the stored session.
func (s AuthService) Logout() error {
	return s.Sessions.Clear()
}

// Current returns the stored session. The zero Session means signed out.
func (s AuthService) Current() (auth.Session, error) {
	return s.Sessions.Load()
}

func (s AuthService) store(session auth.Session) error {
	if !session.Valid() {
		return fmt.Errorf("server returned an empty session")
	}
	if err := s.Sessions.Save(session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if s.Watch != nil {
		s.Watch.Rearm()
	}
	return nil
}

// SessionWatch reacts to an expired session exactly once until it is rearmed.
// Expire may be called from any goroutine.
type SessionWatch struct {
	mu       sync.Mutex
	sessions SessionRepository
	expired  bool
	done     chan struct{}
	log      zerolog.Logger
}

// NewSessionWatch creates an armed watch.
func NewSessionWatch(sessions SessionRepository) *SessionWatch {
	return &SessionWatch{
		sessions: sessions,
		done:     make(chan struct{}),
		log:      logging.NewLogger("session"),
	}
}

// Expire clears the stored session and closes Done. Only the first call after
// arming does anything; it reports whether this call was that one.
func (w *SessionWatch) Expire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.expired {
		return false
	}
	w.expired = true
	if w.sessions != nil {
		if err := w.sessions.Clear(); err != nil {
			w.log.Error().Err(err).Msg("failed to clear expired session")
		}
	}
	w.log.Info().Msg("session expired")
	close(w.done)
	return true
}

// Expired reports whether the session has expired since the last Rearm.
func (w *SessionWatch) Expired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expired
}

// Done is closed when the session expires.
func (w *SessionWatch) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Rearm resets the watch after a new session has been established.
func (w *SessionWatch) Rearm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.expired {
		return
	}
	w.expired = false
	w.done = make(chan struct{})
}
