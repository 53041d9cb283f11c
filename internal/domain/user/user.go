package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrEmailInvalid        = errors.New("user: email is malformed")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrNameRequired        = errors.New("user: name is required")
	ErrInvalidRole         = errors.New("user: invalid role")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
)

type ID string

// Role is one of guest, host or admin. Every account is at least a guest.
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// rank orders roles by privilege; PrimaryRole picks the highest.
var rank = map[Role]int{RoleGuest: 0, RoleHost: 1, RoleAdmin: 2}

// ParseRole accepts any casing and surrounding space.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := rank[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
	return r, nil
}

type User struct {
	ID           ID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Roles        []Role
	Blocked      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ListParams struct {
	Query  string
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	// List returns users newest first together with the unpaginated total.
	List(ctx context.Context, params ListParams) ([]*User, int, error)
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

func NewUser(p CreateParams) (*User, error) {
	if strings.TrimSpace(string(p.ID)) == "" {
		return nil, ErrIDRequired
	}
	email, err := NormalizeEmail(p.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(p.Name)
	switch {
	case strings.TrimSpace(p.PasswordHash) == "":
		return nil, ErrPasswordHashMissing
	case name == "":
		return nil, ErrNameRequired
	}
	roles, err := roleSet(p.Roles)
	if err != nil {
		return nil, err
	}
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC()
	return &User{
		ID:           ID(strings.TrimSpace(string(p.ID))),
		Email:        email,
		Name:         name,
		Phone:        strings.TrimSpace(p.Phone),
		PasswordHash: p.PasswordHash,
		Roles:        roles,
		CreatedAt:    created,
		UpdatedAt:    created,
	}, nil
}

// NormalizeEmail lower-cases and trims an address and checks its syntax.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", ErrEmailInvalid
	}
	return email, nil
}

// Grant adds role if the user does not hold it yet.
func (u *User) Grant(role Role, now time.Time) error {
	r, err := ParseRole(string(role))
	if err != nil {
		return err
	}
	if u.HasRole(r) {
		return nil
	}
	u.Roles, _ = roleSet(append(u.Roles, r))
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
	return nil
}

func (u *User) HasRole(role Role) bool {
	r := Role(strings.ToLower(strings.TrimSpace(string(role))))
	return slices.Contains(u.Roles, r)
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

func (u *User) PrimaryRole() Role {
	primary := RoleGuest
	for _, r := range u.Roles {
		if rank[r] > rank[primary] {
			primary = r
		}
	}
	return primary
}

// roleSet parses roles, always includes guest and orders by privilege.
func roleSet(in []Role) ([]Role, error) {
	out := []Role{RoleGuest}
	for _, raw := range in {
		r, err := ParseRole(string(raw))
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Role) int { return rank[a] - rank[b] })
	return out, nil
}
