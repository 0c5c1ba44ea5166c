package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionSource records how a session was established
type SessionSource string

const (
	SessionSourceAPI  SessionSource = "api"
	SessionSourceDemo SessionSource = "demo"
)

// Session is the authenticated context passed to every operation that acts
// on behalf of a user. It is a value owned by the caller; services never
// keep their own copy.
type Session struct {
	User      *User         `json:"user,omitempty"`
	Token     string        `json:"token,omitempty"`
	Source    SessionSource `json:"source,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Authenticated reports whether a user is present.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// IsAdmin reports whether the session user holds the admin role.
func (s *Session) IsAdmin() bool {
	return s.Authenticated() && s.User.IsAdmin()
}

// IsDemo reports whether the session was created from demo credentials.
func (s *Session) IsDemo() bool {
	return s != nil && s.Source == SessionSourceDemo
}

// UserID returns the session user's id, empty when logged out.
func (s *Session) UserID() string {
	if !s.Authenticated() {
		return ""
	}
	return s.User.ID
}

// Clone returns a deep copy. Mutations are applied to a clone and swapped in
// once they succeed.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.User = s.User.Clone()
	return &c
}

// TokenClaims are the claims read from the bearer token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
}

// Claims reads the bearer token's claims without verifying the signature;
// the client never holds the signing key. Returns an error for tokens that
// are not JWTs.
func (s *Session) Claims() (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return nil, err
	}
	tc := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		tc.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	return tc, nil
}

// Expired reports whether the token's exp claim lies before now. Tokens
// without a readable exp never expire client-side.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	tc, err := s.Claims()
	if err != nil || tc.ExpiresAt.IsZero() {
		return false
	}
	return now.After(tc.ExpiresAt)
}
