package payments

import (
	"context"

	"gowaay/internal/app/dto"
	"gowaay/internal/app/handlers/support"
	"gowaay/internal/app/queries"
	"gowaay/internal/app/uow"
	domainpayments "gowaay/internal/domain/payments"
)

const paymentStatusKey = "payments.status"

type PaymentStatusQuery struct {
	UserID    string
	PaymentID string
}

func (q PaymentStatusQuery) Key() string { return paymentStatusKey }

type PaymentStatusHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle hides other users' payments behind ErrNotFound.
func (h *PaymentStatusHandler) Handle(ctx context.Context, q PaymentStatusQuery) (*dto.Payment, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	tx, err := unit.Payments().ByID(execCtx, domainpayments.ID(q.PaymentID))
	if err != nil {
		return nil, err
	}
	if !tx.OwnedBy(q.UserID) {
		return nil, domainpayments.ErrNotFound
	}
	result := dto.MapPayment(tx)
	return &result, nil
}

var _ queries.Handler[PaymentStatusQuery, *dto.Payment] = (*PaymentStatusHandler)(nil)
