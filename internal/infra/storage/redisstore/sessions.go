package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "gowaay/internal/domain/auth"
	domainuser "gowaay/internal/domain/user"
)

const (
	sessionPrefix   = "session:"
	userIndexPrefix = "session:user:"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// SessionStore keeps bearer sessions in redis, expiring with the session.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

type sessionRecord struct {
	UserID    string    `json:"userId"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return domainauth.ErrTokenRequired
	}
	ttl := session.Remaining(s.now())
	if ttl <= 0 {
		return domainauth.ErrSessionExpired
	}
	rec := sessionRecord{
		UserID:    string(session.UserID),
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
	for _, r := range session.Roles {
		rec.Roles = append(rec.Roles, string(r))
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redisstore: marshal session: %w", err)
	}
	indexKey := userIndexPrefix + string(session.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionPrefix+string(session.Token), data, ttl)
		pipe.SAdd(ctx, indexKey, string(session.Token))
		// Sessions share one TTL, so the newest token outlives the others.
		pipe.Expire(ctx, indexKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisstore: save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	val, err := s.client.Get(ctx, sessionPrefix+string(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domainauth.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: get session: %w", err)
	}
	var rec sessionRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("redisstore: unmarshal session: %w", err)
	}
	session := &domainauth.Session{
		Token:     token,
		UserID:    domainuser.ID(rec.UserID),
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
	for _, r := range rec.Roles {
		session.Roles = append(session.Roles, domainuser.Role(r))
	}
	if session.Expired(s.now()) {
		_ = s.Delete(ctx, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	session, err := s.Get(ctx, token)
	if errors.Is(err, domainauth.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionPrefix+string(token))
		pipe.SRem(ctx, userIndexPrefix+string(session.UserID), string(token))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisstore: delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	indexKey := userIndexPrefix + string(userID)
	tokens, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("redisstore: list user sessions: %w", err)
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionPrefix+t)
	}
	keys = append(keys, indexKey)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redisstore: delete user sessions: %w", err)
	}
	return nil
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
