package api

import (
	"context"
	"net/http"

	"github.com/tesso57/pubdesk/internal/domain/auth"
)

const (
	pathLogin  = "/api/auth/login"
	pathSignup = "/api/auth/signup"
)

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	var session auth.Session
	err := c.do(ctx, http.MethodPost, pathLogin, auth.Credentials{Email: creds.Email, Password: creds.Password}, &session)
	return session, err
}

// Signup creates an account and returns its session.
func (c *Client) Signup(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	var session auth.Session
	err := c.do(ctx, http.MethodPost, pathSignup, creds, &session)
	return session, err
}
