package middleware

import (
	"context"
	"log/slog"
	"time"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/queries"
)

// Observer receives the outcome of every dispatched message.
type Observer interface {
	ObserveMessage(kind, key string, took time.Duration, err error)
}

type timing struct {
	logger   *slog.Logger
	observer Observer
}

func Instrumentation(logger *slog.Logger, observer Observer) CommandMiddleware {
	t := timing{logger: logger, observer: observer}
	return commandStep(func(ctx context.Context, cmd commands.Command, next commands.Bus) (res any, err error) {
		defer t.since(ctx, "command", cmd.Key(), time.Now(), &err)
		return next.Dispatch(ctx, cmd)
	})
}

func QueryInstrumentation(logger *slog.Logger, observer Observer) QueryMiddleware {
	t := timing{logger: logger, observer: observer}
	return queryStep(func(ctx context.Context, q queries.Query, next queries.Bus) (res any, err error) {
		defer t.since(ctx, "query", q.Key(), time.Now(), &err)
		return next.Ask(ctx, q)
	})
}

func (t timing) since(ctx context.Context, kind, key string, start time.Time, errp *error) {
	took := time.Since(start)
	err := *errp
	if t.observer != nil {
		t.observer.ObserveMessage(kind, key, took, err)
	}
	if t.logger == nil {
		return
	}
	attrs := []any{"key", key, "duration", took}
	if err != nil {
		t.logger.DebugContext(ctx, kind+" failed", append(attrs, "error", err)...)
		return
	}
	t.logger.DebugContext(ctx, kind+" handled", attrs...)
}
