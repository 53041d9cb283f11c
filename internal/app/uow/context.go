package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: no unit of work bound to context")

type unitKey struct{}

// sessionBinder is implemented by units that carry a driver session which has
// to travel in the context alongside them.
type sessionBinder interface {
	InjectContext(ctx context.Context) context.Context
}

// Bind attaches unit to ctx so repositories reached through it share one
// transaction.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if binder, ok := unit.(sessionBinder); ok {
		ctx = binder.InjectContext(ctx)
	}
	return context.WithValue(ctx, unitKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok && unit != nil
}

// Current is FromContext for handlers that cannot run outside a unit.
func Current(ctx context.Context) (UnitOfWork, error) {
	if unit, ok := FromContext(ctx); ok {
		return unit, nil
	}
	return nil, ErrUnitOfWorkMissing
}
