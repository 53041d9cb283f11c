package auth

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"gowaay/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
	ErrSessionExpired  = errors.New("auth: session expired")
)

// Token is the opaque bearer value sent in the Authorization header.
type Token string

// Session binds a bearer token to a user. Roles is the snapshot taken at login
// and refreshed on every resolve.
type Session struct {
	Token     Token
	UserID    user.ID
	Roles     []user.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	Token  Token
	UserID user.ID
	Roles  []user.Role
	TTL    time.Duration
	Now    time.Time
}

func (p CreateSessionParams) validate() (Token, error) {
	tok := Token(strings.TrimSpace(string(p.Token)))
	switch {
	case tok == "":
		return "", ErrTokenRequired
	case strings.TrimSpace(string(p.UserID)) == "":
		return "", ErrUserRequired
	case p.TTL <= 0:
		return "", ErrTTLInvalid
	}
	return tok, nil
}

func NewSession(p CreateSessionParams) (*Session, error) {
	tok, err := p.validate()
	if err != nil {
		return nil, err
	}
	issued := utc(p.Now)
	return &Session{
		Token:     tok,
		UserID:    p.UserID,
		Roles:     slices.Clone(p.Roles),
		CreatedAt: issued,
		ExpiresAt: issued.Add(p.TTL),
	}, nil
}

func (s *Session) Expired(at time.Time) bool { return s.Remaining(at) == 0 }

// Remaining is the lifetime left at the given instant, never negative.
func (s *Session) Remaining(at time.Time) time.Duration {
	return max(s.ExpiresAt.Sub(utc(at)), 0)
}

func (s *Session) HasRole(role user.Role) bool {
	return slices.ContainsFunc(s.Roles, func(r user.Role) bool {
		return strings.EqualFold(string(r), string(role))
	})
}

// SyncRoles replaces the snapshot with the user's current roles.
func (s *Session) SyncRoles(u *user.User) {
	if u != nil {
		s.Roles = slices.Clone(u.Roles)
	}
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC()
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
