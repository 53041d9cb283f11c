package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	domainauth "gowaay/internal/domain/auth"
	domainuser "gowaay/internal/domain/user"
)

// SessionStore keeps bearer sessions in process. Expired sessions are removed
// when they are next looked up.
type SessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[domainauth.Token]domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now, sessions: map[domainauth.Token]domainauth.Session{}}
}

func (s *SessionStore) Save(_ context.Context, session *domainauth.Session) error {
	if session == nil || session.Token == "" {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *sessionCopy(*session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		delete(s.sessions, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return sessionCopy(session), nil
}

func (s *SessionStore) Delete(_ context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// DeleteByUser revokes every session of userID, e.g. after the account is blocked.
func (s *SessionStore) DeleteByUser(_ context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

func sessionCopy(s domainauth.Session) *domainauth.Session {
	s.Roles = slices.Clone(s.Roles)
	return &s
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
