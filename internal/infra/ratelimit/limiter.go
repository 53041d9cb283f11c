package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Local is a per-key token bucket refilled evenly over Window. It is process local.
type Local struct {
	Requests int
	Window   time.Duration

	limiters sync.Map
}

func NewLocal(requests int, window time.Duration) *Local {
	return &Local{Requests: requests, Window: window}
}

func (l *Local) Allow(_ context.Context, key string) (Decision, error) {
	lim := l.limiter(key)
	now := time.Now()
	allowed := lim.AllowN(now, 1)
	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   allowed,
		Limit:     l.Requests,
		Remaining: remaining,
		ResetAt:   now.Add(l.Window / time.Duration(max(l.Requests, 1))),
	}, nil
}

func (l *Local) limiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	every := rate.Every(l.Window / time.Duration(max(l.Requests, 1)))
	lim := rate.NewLimiter(every, max(l.Requests, 1))
	actual, _ := l.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}

// Redis counts requests in fixed windows shared by every process.
type Redis struct {
	Client   *redis.Client
	Requests int
	Window   time.Duration
	Prefix   string
}

func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	windowStart := now.Truncate(r.Window)
	redisKey := r.prefix() + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	var incr *redis.IntCmd
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, r.Window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: incr: %w", err)
	}
	count := int(incr.Val())
	remaining := r.Requests - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= r.Requests,
		Limit:     r.Requests,
		Remaining: remaining,
		ResetAt:   windowStart.Add(r.Window),
	}, nil
}

func (r *Redis) prefix() string {
	if r.Prefix != "" {
		return r.Prefix
	}
	return "ratelimit:"
}

var (
	_ Limiter = (*Local)(nil)
	_ Limiter = (*Redis)(nil)
)
