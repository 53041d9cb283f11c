package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/domain/user"
)

func TestNewSessionValidates(t *testing.T) {
	_, err := NewSession(CreateSessionParams{UserID: "u1", TTL: time.Hour})
	assert.ErrorIs(t, err, ErrTokenRequired)
	_, err = NewSession(CreateSessionParams{Token: "t", TTL: time.Hour})
	assert.ErrorIs(t, err, ErrUserRequired)
	_, err = NewSession(CreateSessionParams{Token: "t", UserID: "u1"})
	assert.ErrorIs(t, err, ErrTTLInvalid)
}

func TestSessionLifetime(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s, err := NewSession(CreateSessionParams{Token: " tok ", UserID: "u1", Roles: []user.Role{user.RoleGuest}, TTL: time.Hour, Now: now})
	require.NoError(t, err)
	assert.Equal(t, Token("tok"), s.Token)

	assert.Equal(t, 30*time.Minute, s.Remaining(now.Add(30*time.Minute)))
	assert.False(t, s.Expired(now.Add(59*time.Minute)))
	assert.True(t, s.Expired(now.Add(time.Hour)))
	assert.Zero(t, s.Remaining(now.Add(2*time.Hour)))
}

func TestSessionRoles(t *testing.T) {
	s, err := NewSession(CreateSessionParams{Token: "t", UserID: "u1", Roles: []user.Role{user.RoleGuest}, TTL: time.Minute})
	require.NoError(t, err)
	assert.True(t, s.HasRole("GUEST"))
	assert.False(t, s.HasRole(user.RoleAdmin))

	u := &user.User{ID: "u1", Roles: []user.Role{user.RoleGuest, user.RoleHost}}
	s.SyncRoles(u)
	assert.True(t, s.HasRole(user.RoleHost))
	u.Roles[1] = user.RoleAdmin
	assert.False(t, s.HasRole(user.RoleAdmin))
}
