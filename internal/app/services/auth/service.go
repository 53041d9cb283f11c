package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainauth "gowaay/internal/domain/auth"
	domainuser "gowaay/internal/domain/user"
)

const (
	minPasswordRunes  = 8
	defaultSessionTTL = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = fmt.Errorf("auth: password must be at least %d characters", minPasswordRunes)
	ErrUserBlocked        = errors.New("auth: user blocked")
	errNotConfigured      = errors.New("auth: service not configured")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service owns accounts and bearer sessions. Every account starts as a guest;
// the host role is granted on approval and admin only through EnsureAdmin.
type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

type RegisterParams struct {
	Email    string
	Name     string
	Phone    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

func (s *Service) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	u, err := s.newAccount(p.Email, p.Name, p.Phone, p.Password, domainuser.RoleGuest)
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return nil, err
	}
	s.logger().InfoContext(ctx, "user registered", "user_id", u.ID)
	return s.signIn(ctx, u)
}

// Login answers ErrInvalidCredentials for unknown emails and wrong passwords
// alike. A blocked account is reported only after the password matched.
func (s *Service) Login(ctx context.Context, p LoginParams) (*AuthResult, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	u, err := s.Users.ByEmail(ctx, p.Email)
	switch {
	case errors.Is(err, domainuser.ErrNotFound):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, err
	}
	if s.Passwords.Compare(u.PasswordHash, p.Password) != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Blocked {
		return nil, ErrUserBlocked
	}
	s.logger().InfoContext(ctx, "user authenticated", "user_id", u.ID, "role", u.PrimaryRole())
	return s.signIn(ctx, u)
}

// Logout is a no-op for an empty or unknown token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.configured(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

// ResolveToken loads the session behind a bearer token and refreshes its role
// snapshot so roles granted after login apply immediately.
func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionExpired
	}
	u, err := s.Users.ByID(ctx, session.UserID)
	if errors.Is(err, domainuser.ErrNotFound) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Blocked {
		_ = s.Sessions.DeleteByUser(ctx, u.ID)
		return nil, ErrUserBlocked
	}
	session.SyncRoles(u)
	return &ResolveResult{User: u, Session: session}, nil
}

// EnsureAdmin creates the bootstrap admin or promotes the existing account with
// that email. password is only read when the account is created.
func (s *Service) EnsureAdmin(ctx context.Context, email, name, password string) (*domainuser.User, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	u, err := s.Users.ByEmail(ctx, email)
	switch {
	case err == nil && u.IsAdmin():
		return u, nil
	case err == nil:
		if err := u.Grant(domainuser.RoleAdmin, s.now()); err != nil {
			return nil, err
		}
	case errors.Is(err, domainuser.ErrNotFound):
		if strings.TrimSpace(name) == "" {
			name = "Admin"
		}
		if u, err = s.newAccount(email, name, "", password, domainuser.RoleAdmin); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return nil, err
	}
	s.logger().InfoContext(ctx, "admin account ensured", "user_id", u.ID, "email", u.Email)
	return u, nil
}

func (s *Service) newAccount(email, name, phone, password string, role domainuser.Role) (*domainuser.User, error) {
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return nil, ErrPasswordTooShort
	}
	if _, err := domainuser.NormalizeEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, domainuser.ErrNameRequired
	}
	hash, err := s.Passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	return domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         name,
		Phone:        phone,
		PasswordHash: hash,
		Roles:        []domainuser.Role{role},
		CreatedAt:    s.now(),
	})
}

func (s *Service) signIn(ctx context.Context, u *domainuser.User) (*AuthResult, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, fmt.Errorf("auth: token: %w", err)
	}
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		UserID: u.ID,
		Roles:  u.Roles,
		TTL:    ttl,
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *Service) configured() error {
	if s.Users == nil || s.Sessions == nil || s.Passwords == nil || s.Tokens == nil {
		return errNotConfigured
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
