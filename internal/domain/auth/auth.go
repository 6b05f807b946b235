// Package auth defines credentials and session models.
package auth

import (
	"net/mail"
	"strings"
	"unicode"
)

const PasswordMinLength = 6

// Credentials are entered on the login and signup forms.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims surrounding whitespace.
func (c Credentials) Normalize() Credentials {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Password = strings.TrimSpace(c.Password)
	return c
}

// Session identifies the signed-in user.
type Session struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// Valid reports whether the session carries a token.
func (s Session) Valid() bool {
	return s.Token != ""
}

// ValidateLogin checks email and password.
func ValidateLogin(c Credentials) error {
	c = c.Normalize()
	verr := FieldErrors{}
	switch {
	case c.Email == "":
		verr["email"] = "Email is required"
	case !validEmail(c.Email):
		verr["email"] = "Email is invalid"
	}
	switch {
	case c.Password == "":
		verr["password"] = "Password is required"
	case len([]rune(c.Password)) < PasswordMinLength:
		verr["password"] = "Password must be at least 6 characters"
	case !strongPassword(c.Password):
		verr["password"] = "Password must contain a letter and a number"
	}
	if len(verr) == 0 {
		return nil
	}
	return verr
}

// ValidateSignup checks the login fields plus the name.
func ValidateSignup(c Credentials) error {
	verr := FieldErrors{}
	if err := ValidateLogin(c); err != nil {
		if fe, ok := err.(FieldErrors); ok {
			verr = fe
		}
	}
	if strings.TrimSpace(c.Name) == "" {
		verr["name"] = "Name is required"
	}
	if len(verr) == 0 {
		return nil
	}
	return verr
}

// FieldErrors maps form fields to messages.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	for _, field := range []string{"name", "email", "password"} {
		if msg, ok := f[field]; ok {
			return msg
		}
	}
	return "invalid credentials"
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

func strongPassword(pw string) bool {
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
