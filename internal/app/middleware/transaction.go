package middleware

import (
	"context"
	"fmt"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/uow"
)

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// SelfManagedTransaction is implemented by commands that open their own units,
// typically because part of their work must persist even when they fail.
type SelfManagedTransaction interface {
	commands.Command
	ManagesOwnTransaction() bool
}

func selfManaged(cmd commands.Command) bool {
	s, ok := cmd.(SelfManagedTransaction)
	return ok && s.ManagesOwnTransaction()
}

// Transaction runs every other command inside a fresh unit bound to the
// context, committing only when the handler succeeds.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return commandStep(func(ctx context.Context, cmd commands.Command, next commands.Bus) (any, error) {
		if selfManaged(cmd) {
			return next.Dispatch(ctx, cmd)
		}
		var opts uow.TxOptions
		if optsProvider != nil {
			opts = optsProvider(cmd)
		}
		unit, err := factory.Begin(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("begin unit for %s: %w", cmd.Key(), err)
		}
		txCtx := uow.Bind(ctx, unit)
		res, err := next.Dispatch(txCtx, cmd)
		if err != nil {
			_ = unit.Rollback(txCtx)
			return nil, err
		}
		if err := unit.Commit(txCtx); err != nil {
			_ = unit.Rollback(txCtx)
			return nil, err
		}
		return res, nil
	})
}
