package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gowaay/internal/app/outbox"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	"gowaay/internal/domain/ledger"
	domainpayments "gowaay/internal/domain/payments"
)

var (
	ErrNotBookingOwner = errors.New("payments: booking belongs to another user")
	ErrMissingParams   = errors.New("payments: missing payment verification parameters")
)

// Settler applies ledger events and persists both records with their events.
type Settler struct {
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Observer policies.LedgerObserver
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s Settler) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Settler) encoder() outbox.EventEncoder {
	if s.Encoder != nil {
		return s.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (s Settler) observer() policies.LedgerObserver {
	if s.Observer != nil {
		return s.Observer
	}
	return policies.NopLedgerObserver{}
}

// Settle runs ev through the ledger inside unit. A nil booking is tolerated.
// Once a payment completes or a manual transfer is submitted, the other pending
// manual transfers of the order are superseded.
func (s Settler) Settle(ctx context.Context, unit uow.UnitOfWork, tx *domainpayments.Transaction, b *domainbooking.Booking, ev ledger.Event) (ledger.State, error) {
	state, err := ledger.Settle(tx, b, ev, s.now())
	s.observer().ObserveLedger(string(ev.Kind), string(state.Payment), err)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WarnContext(ctx, "ledger transition rejected", "kind", ev.Kind, "payment_id", tx.ID, "status", tx.Status, "error", err)
		}
		return state, err
	}
	if err := s.persist(ctx, unit, tx, b); err != nil {
		return state, err
	}
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "ledger transition applied", "kind", ev.Kind, "payment_id", tx.ID, "order_id", tx.OrderID, "payment_status", state.Payment, "booking_payment_status", state.BookingPayment)
	}
	switch {
	case ev.Kind == ledger.ManualSubmitted:
		err = s.supersedeManual(ctx, unit, tx, "replaced by manual payment "+string(tx.ID))
	case ev.Succeeded() && state.Payment == domainpayments.StatusCompleted:
		err = s.supersedeManual(ctx, unit, tx, "booking paid by payment "+string(tx.ID))
	}
	return state, err
}

// supersedeManual fails every other pending manual transfer on the order of
// settled so no attempt is left waiting for a review that cannot happen.
func (s Settler) supersedeManual(ctx context.Context, unit uow.UnitOfWork, settled *domainpayments.Transaction, reason string) error {
	txs, err := unit.Payments().ListByOrder(ctx, settled.OrderID)
	if err != nil {
		return err
	}
	for _, other := range txs {
		if other.ID == settled.ID || other.Method != domainpayments.MethodManual || other.Status != domainpayments.StatusPending {
			continue
		}
		if _, err := s.Settle(ctx, unit, other, nil, ledger.Event{Kind: ledger.Superseded, Reason: reason}); err != nil {
			return err
		}
	}
	return nil
}

func (s Settler) persist(ctx context.Context, unit uow.UnitOfWork, tx *domainpayments.Transaction, b *domainbooking.Booking) error {
	if err := unit.Payments().Save(ctx, tx); err != nil {
		return err
	}
	aggs := []outbox.Aggregate{tx}
	if b != nil {
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		aggs = append(aggs, b)
	}
	return outbox.RecordAggregates(ctx, s.Outbox, s.encoder(), aggs...)
}

// loadOrder resolves the booking behind a transaction; a vanished booking yields nil.
func loadOrder(ctx context.Context, unit uow.UnitOfWork, tx *domainpayments.Transaction) (*domainbooking.Booking, error) {
	b, err := unit.Bookings().ByID(ctx, tx.OrderID)
	if err != nil {
		if errors.Is(err, domainbooking.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}
