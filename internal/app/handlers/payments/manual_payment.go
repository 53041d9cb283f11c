package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	"gowaay/internal/domain/ledger"
	domainpayments "gowaay/internal/domain/payments"
)

const (
	submitManualPaymentKey = "payments.manual.submit"
	reviewManualPaymentKey = "payments.manual.review"
)

var ErrNoPendingManualPayment = errors.New("payments: no pending manual payment for booking")

// SubmitManualPaymentCommand records a bKash/Nagad transfer for admin review.
type SubmitManualPaymentCommand struct {
	UserID          string `validate:"required"`
	BookingID       string `validate:"required"`
	TxnID           string `validate:"required"`
	AmountTk        int64  `validate:"gt=0"`
	Method          string
	IdempotencyKeyV string
}

func (c SubmitManualPaymentCommand) Key() string { return submitManualPaymentKey }

func (c SubmitManualPaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SubmitManualPaymentCommand) ResultPrototype() any { return &dto.Booking{} }

type SubmitManualPaymentHandler struct {
	Settler
}

func (h *SubmitManualPaymentHandler) Handle(ctx context.Context, cmd SubmitManualPaymentCommand) (*dto.Booking, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := domainpayments.ParseMethod(cmd.Method); err != nil {
		return nil, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if b.UserID != cmd.UserID {
		return nil, ErrNotBookingOwner
	}
	now := h.now()
	if err := b.SubmitManualPayment(cmd.TxnID, cmd.Method, cmd.AmountTk, now); err != nil {
		return nil, err
	}
	tx, err := domainpayments.NewTransaction(domainpayments.CreateParams{
		ID:      domainpayments.ID(uuid.NewString()),
		UserID:  cmd.UserID,
		OrderID: b.ID,
		Amount:  b.Amount,
		Method:  domainpayments.MethodManual,
		Products: []domainpayments.Product{{
			Name:     b.RoomTitle,
			Category: "room",
			Quantity: 1,
			PriceTk:  b.Amount.Amount,
		}},
		Now: now,
	})
	if err != nil {
		return nil, err
	}
	_, err = h.Settle(ctx, unit, tx, b, ledger.Event{
		Kind:          ledger.ManualSubmitted,
		TransactionID: strings.TrimSpace(cmd.TxnID),
		Payload: map[string]any{
			"txnId":  strings.TrimSpace(cmd.TxnID),
			"method": b.ManualPayment.Method,
			"amount": cmd.AmountTk,
		},
	})
	if err != nil {
		return nil, err
	}
	result := dto.MapBooking(b)
	return &result, nil
}

// ReviewManualPaymentCommand settles the latest pending manual transfer of a booking.
type ReviewManualPaymentCommand struct {
	BookingID string `validate:"required"`
	Approve   bool
	Note      string
}

func (c ReviewManualPaymentCommand) Key() string { return reviewManualPaymentKey }

func (c ReviewManualPaymentCommand) RequiredRole() string { return "admin" }

type ReviewManualPaymentHandler struct {
	Settler
}

func (h *ReviewManualPaymentHandler) Handle(ctx context.Context, cmd ReviewManualPaymentCommand) (*dto.Booking, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	txs, err := unit.Payments().ListByOrder(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	tx := domainpayments.LatestPendingManual(txs)
	if tx == nil {
		return nil, ErrNoPendingManualPayment
	}
	ev := ledger.Event{Kind: ledger.ManualRejected, Reason: strings.TrimSpace(cmd.Note)}
	if cmd.Approve {
		ev = ledger.Event{Kind: ledger.ManualApproved}
	}
	if _, err := h.Settle(ctx, unit, tx, b, ev); err != nil {
		return nil, err
	}
	result := dto.MapBooking(b)
	return &result, nil
}

var (
	_ commands.Handler[SubmitManualPaymentCommand, *dto.Booking] = (*SubmitManualPaymentHandler)(nil)
	_ commands.Handler[ReviewManualPaymentCommand, *dto.Booking] = (*ReviewManualPaymentHandler)(nil)
)
