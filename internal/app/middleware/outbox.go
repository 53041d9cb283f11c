package middleware

import (
	"context"
	"fmt"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/outbox"
)

// OutboxFlush persists events staged by a successful command. It sits inside
// Transaction so the flush shares the command's unit.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return commandStep(func(ctx context.Context, cmd commands.Command, next commands.Bus) (any, error) {
		res, err := next.Dispatch(ctx, cmd)
		if err != nil {
			return nil, err
		}
		if err := box.Flush(ctx); err != nil {
			return nil, fmt.Errorf("flush events of %s: %w", cmd.Key(), err)
		}
		return res, nil
	})
}
