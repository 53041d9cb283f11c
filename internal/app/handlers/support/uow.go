package support

import (
	"context"

	"gowaay/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit in ctx or opens a read-only one. The cleanup
// func is nil when an outer unit is reused.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	bound := uow.Bind(ctx, unit)
	return unit, bound, func() { _ = unit.Rollback(bound) }, nil
}

// RunInUnit runs fn inside a fresh unit and commits when fn succeeds.
func RunInUnit(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	if factory == nil {
		return uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	bound := uow.Bind(ctx, unit)
	if err := fn(bound, unit); err != nil {
		_ = unit.Rollback(bound)
		return err
	}
	return unit.Commit(bound)
}

// InUnit runs fn in the unit already bound to ctx, or in a fresh one from
// factory that commits on success.
func InUnit(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	if unit, ok := uow.FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	return RunInUnit(ctx, factory, fn)
}
