package middleware

import (
	"context"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/queries"
)

type CommandMiddleware func(next commands.Bus) commands.Bus

type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands wraps base so that mws[0] sees a command first.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	return chain(base, mws)
}

// ChainQueries wraps base so that mws[0] sees a query first.
func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	return chain(base, mws)
}

func chain[B any, M ~func(B) B](base B, layers []M) B {
	for i := len(layers) - 1; i >= 0; i-- {
		base = layers[i](base)
	}
	return base
}

type dispatchFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f dispatchFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

type askFunc func(ctx context.Context, q queries.Query) (any, error)

func (f askFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}

// commandStep turns a function that decides whether and how to call next into
// a middleware.
func commandStep(step func(ctx context.Context, cmd commands.Command, next commands.Bus) (any, error)) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return dispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			return step(ctx, cmd, next)
		})
	}
}

func queryStep(step func(ctx context.Context, q queries.Query, next queries.Bus) (any, error)) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return askFunc(func(ctx context.Context, q queries.Query) (any, error) {
			return step(ctx, q, next)
		})
	}
}

// guard runs check on every message before handing it on.
type guard func(ctx context.Context, message any) error

func (g guard) forCommands() CommandMiddleware {
	return commandStep(func(ctx context.Context, cmd commands.Command, next commands.Bus) (any, error) {
		if err := g(ctx, cmd); err != nil {
			return nil, err
		}
		return next.Dispatch(ctx, cmd)
	})
}

func (g guard) forQueries() QueryMiddleware {
	return queryStep(func(ctx context.Context, q queries.Query, next queries.Bus) (any, error) {
		if err := g(ctx, q); err != nil {
			return nil, err
		}
		return next.Ask(ctx, q)
	})
}
