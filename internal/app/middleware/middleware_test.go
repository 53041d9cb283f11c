package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/app/actor"
	"gowaay/internal/app/commands"
	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	domainhosts "gowaay/internal/domain/hosts"
	domainpayments "gowaay/internal/domain/payments"
	domainrooms "gowaay/internal/domain/rooms"
	domainuser "gowaay/internal/domain/user"
)

type adminOnly struct{}

func (adminOnly) Key() string          { return "test.admin" }
func (adminOnly) RequiredRole() string { return "admin" }

type openCmd struct{}

func (openCmd) Key() string { return "test.open" }

type bookCmd struct {
	IdemKey string
	N       int
}

func (bookCmd) Key() string              { return "test.book" }
func (c bookCmd) IdempotencyKey() string { return c.IdemKey }
func (bookCmd) ResultPrototype() any     { return new(int) }

type selfManagedCmd struct{}

func (selfManagedCmd) Key() string                 { return "test.self" }
func (selfManagedCmd) ManagesOwnTransaction() bool { return true }

func TestRoleAuthorizer(t *testing.T) {
	var a RoleAuthorizer
	ctx := context.Background()

	assert.NoError(t, a.Authorize(ctx, openCmd{}))
	assert.ErrorIs(t, a.Authorize(ctx, adminOnly{}), ErrUnauthenticated)

	guest := actor.WithActor(ctx, actor.Actor{UserID: "u1", Roles: []string{"guest"}})
	assert.ErrorIs(t, a.Authorize(guest, adminOnly{}), ErrForbidden)

	admin := actor.WithActor(ctx, actor.Actor{UserID: "u2", Roles: []string{"Admin"}})
	assert.NoError(t, a.Authorize(admin, adminOnly{}))
}

type mapStore struct {
	mu    sync.Mutex
	items map[string]IdempotencyRecord
}

func (s *mapStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

func TestIdempotencyReplaysPerCaller(t *testing.T) {
	calls := 0
	bus := commands.NewInMemoryBus()
	commands.Register[bookCmd, *int](bus, commands.HandlerFunc[bookCmd, *int](func(ctx context.Context, cmd bookCmd) (*int, error) {
		calls++
		v := cmd.N
		return &v, nil
	}))
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	chained := ChainCommands(bus, Idempotency(store, nil))

	alice := actor.WithActor(context.Background(), actor.Actor{UserID: "alice"})
	bob := actor.WithActor(context.Background(), actor.Actor{UserID: "bob"})

	first, err := commands.Dispatch[bookCmd, *int](alice, chained, bookCmd{IdemKey: "k1", N: 7})
	require.NoError(t, err)
	replay, err := commands.Dispatch[bookCmd, *int](alice, chained, bookCmd{IdemKey: "k1", N: 99})
	require.NoError(t, err)
	assert.Equal(t, *first, *replay)
	assert.Equal(t, 1, calls)

	_, err = commands.Dispatch[bookCmd, *int](bob, chained, bookCmd{IdemKey: "k1", N: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = commands.Dispatch[bookCmd, *int](alice, chained, bookCmd{N: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	assert.Contains(t, store.items, "test.book:alice:k1")
	assert.Contains(t, store.items, "test.book:bob:k1")
}

type countingUnit struct {
	commits, rollbacks int
}

func (u *countingUnit) Rooms() domainrooms.Repository       { return nil }
func (u *countingUnit) Hosts() domainhosts.Repository       { return nil }
func (u *countingUnit) Bookings() domainbooking.Repository  { return nil }
func (u *countingUnit) Payments() domainpayments.Repository { return nil }
func (u *countingUnit) Users() domainuser.Repository        { return nil }

func (u *countingUnit) Commit(context.Context) error {
	u.commits++
	return nil
}

func (u *countingUnit) Rollback(context.Context) error {
	u.rollbacks++
	return nil
}

type countingFactory struct{ units []*countingUnit }

func (f *countingFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	u := &countingUnit{}
	f.units = append(f.units, u)
	return u, nil
}

func TestTransactionCommitsAndRollsBack(t *testing.T) {
	bus := commands.NewInMemoryBus()
	fail := errors.New("boom")
	commands.Register[openCmd, any](bus, commands.HandlerFunc[openCmd, any](func(ctx context.Context, _ openCmd) (any, error) {
		_, ok := uow.FromContext(ctx)
		require.True(t, ok)
		return nil, nil
	}))
	commands.Register[adminOnly, any](bus, commands.HandlerFunc[adminOnly, any](func(context.Context, adminOnly) (any, error) {
		return nil, fail
	}))
	commands.Register[selfManagedCmd, any](bus, commands.HandlerFunc[selfManagedCmd, any](func(ctx context.Context, _ selfManagedCmd) (any, error) {
		_, ok := uow.FromContext(ctx)
		assert.False(t, ok)
		return nil, nil
	}))
	factory := &countingFactory{}
	chained := ChainCommands(bus, Transaction(factory, nil))

	_, err := chained.Dispatch(context.Background(), openCmd{})
	require.NoError(t, err)
	_, err = chained.Dispatch(context.Background(), adminOnly{})
	require.ErrorIs(t, err, fail)
	_, err = chained.Dispatch(context.Background(), selfManagedCmd{})
	require.NoError(t, err)

	require.Len(t, factory.units, 2)
	assert.Equal(t, 1, factory.units[0].commits)
	assert.Equal(t, 0, factory.units[0].rollbacks)
	assert.Equal(t, 0, factory.units[1].commits)
	assert.Equal(t, 1, factory.units[1].rollbacks)
}

type recordingObserver struct{ keys []string }

func (o *recordingObserver) ObserveMessage(kind, key string, took time.Duration, err error) {
	o.keys = append(o.keys, kind+":"+key)
}

func TestInstrumentationReports(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.Register[openCmd, any](bus, commands.HandlerFunc[openCmd, any](func(context.Context, openCmd) (any, error) {
		return nil, nil
	}))
	obs := &recordingObserver{}
	chained := ChainCommands(bus, Instrumentation(nil, obs))
	_, err := chained.Dispatch(context.Background(), openCmd{})
	require.NoError(t, err)
	assert.Equal(t, []string{"command:test.open"}, obs.keys)
}

func TestIdempotencyDoesNotRecordFailures(t *testing.T) {
	fail := errors.New("room taken")
	calls := 0
	bus := commands.NewInMemoryBus()
	commands.Register(bus, func(_ context.Context, cmd bookCmd) (*int, error) {
		calls++
		if calls == 1 {
			return nil, fail
		}
		return &cmd.N, nil
	})
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	chained := ChainCommands(bus, Idempotency(store, nil))
	ctx := actor.WithActor(context.Background(), actor.Actor{UserID: "alice"})

	_, err := chained.Dispatch(ctx, bookCmd{IdemKey: "k", N: 5})
	require.ErrorIs(t, err, fail)
	assert.Empty(t, store.items)

	got, err := commands.Dispatch[bookCmd, *int](ctx, chained, bookCmd{IdemKey: "k", N: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, *got)
	assert.Equal(t, "test.book", store.items["test.book:alice:k"].Command)
}

func TestValidationStopsBeforeHandler(t *testing.T) {
	called := false
	bus := commands.NewInMemoryBus()
	commands.Register(bus, func(context.Context, openCmd) (any, error) {
		called = true
		return nil, nil
	})
	invalid := errors.New("invalid")
	chained := ChainCommands(bus, Validation(validatorFunc(func(context.Context, any) error { return invalid })))

	_, err := chained.Dispatch(context.Background(), openCmd{})
	require.ErrorIs(t, err, invalid)
	assert.False(t, called)
}

type validatorFunc func(ctx context.Context, message any) error

func (f validatorFunc) Validate(ctx context.Context, message any) error { return f(ctx, message) }
