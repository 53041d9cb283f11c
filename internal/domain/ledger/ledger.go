// Package ledger owns every payment-driven transition of a payment attempt and
// its booking. Gateway verification, IPN callbacks and manual review all go
// through Apply so the rules live in one table.
package ledger

import (
	"errors"
	"strings"
	"time"

	"gowaay/internal/domain/booking"
	"gowaay/internal/domain/payments"
)

var (
	ErrAlreadyCompleted        = errors.New("ledger: payment already completed")
	ErrNotAwaitingVerification = errors.New("ledger: booking has no manual payment awaiting verification")
	ErrBookingPaid             = errors.New("ledger: booking is already paid")
	ErrUnknownEvent            = errors.New("ledger: unknown event")
	ErrTransactionRequired     = errors.New("ledger: transaction is required")
)

type Kind string

const (
	SessionCreated  Kind = "session_created"
	SessionFailed   Kind = "session_failed"
	GatewayVerified Kind = "gateway_verified"
	IPNReceived     Kind = "ipn_received"
	ManualSubmitted Kind = "manual_submitted"
	ManualApproved  Kind = "manual_approved"
	ManualRejected  Kind = "manual_rejected"
	// Superseded fails a pending attempt that another attempt has settled or
	// replaced. It never touches the booking.
	Superseded Kind = "superseded"
)

// Gateway statuses reported by SSLCommerz.
const (
	GatewayValid     = "VALID"
	GatewayValidated = "VALIDATED"
)

type Event struct {
	Kind              Kind
	GatewayStatus     string
	TransactionID     string
	BankTransactionID string
	Payload           map[string]any
	Reason            string
}

// Succeeded reports whether the event settles the payment. Verification accepts
// VALID and VALIDATED, IPN only VALID.
func (e Event) Succeeded() bool {
	status := strings.ToUpper(strings.TrimSpace(e.GatewayStatus))
	switch e.Kind {
	case GatewayVerified:
		return status == GatewayValid || status == GatewayValidated
	case IPNReceived:
		return status == GatewayValid
	case ManualApproved:
		return true
	}
	return false
}

func (e Event) failure() bool {
	switch e.Kind {
	case SessionFailed, ManualRejected, Superseded:
		return true
	case GatewayVerified, IPNReceived:
		return !e.Succeeded()
	}
	return false
}

type State struct {
	Payment              payments.Status
	Booking              booking.Status
	BookingPayment       booking.PaymentStatus
	AwaitingVerification bool
}

// Apply returns the state after ev. Completed payments are absorbing: a repeated
// success is a no-op and a failure is rejected with ErrAlreadyCompleted.
func Apply(s State, ev Event) (State, error) {
	switch ev.Kind {
	case SessionCreated:
		if s.Payment == payments.StatusCompleted {
			return s, ErrAlreadyCompleted
		}
		s.Payment = payments.StatusPending
		return s, nil
	case ManualSubmitted:
		if s.Payment == payments.StatusCompleted {
			return s, ErrAlreadyCompleted
		}
		if s.BookingPayment == booking.PaymentPaid {
			return s, ErrBookingPaid
		}
		s.Payment = payments.StatusPending
		s.BookingPayment = booking.PaymentPending
		s.AwaitingVerification = true
		return s, nil
	case ManualApproved, ManualRejected:
		if s.Payment == payments.StatusCompleted {
			if ev.Kind == ManualApproved {
				return s, nil
			}
			return s, ErrAlreadyCompleted
		}
		if !s.AwaitingVerification {
			return s, ErrNotAwaitingVerification
		}
	case Superseded:
		if s.Payment == payments.StatusCompleted {
			return s, ErrAlreadyCompleted
		}
		s.Payment = payments.StatusFailed
		return s, nil
	case SessionFailed, GatewayVerified, IPNReceived:
	default:
		return s, ErrUnknownEvent
	}

	if ev.Succeeded() {
		if s.Payment == payments.StatusCompleted {
			return s, nil
		}
		s.Payment = payments.StatusCompleted
		s.BookingPayment = booking.PaymentPaid
		if s.Booking != booking.StatusCancelled {
			s.Booking = booking.StatusConfirmed
		}
		s.AwaitingVerification = false
		return s, nil
	}

	if s.Payment == payments.StatusCompleted {
		return s, ErrAlreadyCompleted
	}
	s.Payment = payments.StatusFailed
	if ev.Kind == SessionFailed {
		return s, nil
	}
	// A gateway attempt failing while a manual transfer awaits review leaves
	// the booking to that review.
	if s.AwaitingVerification && ev.Kind != ManualRejected {
		return s, nil
	}
	if s.BookingPayment != booking.PaymentPaid {
		s.BookingPayment = booking.PaymentFailed
	}
	s.AwaitingVerification = false
	return s, nil
}

// StateOf reads the ledger state from the records. A nil booking leaves the booking fields empty.
func StateOf(tx *payments.Transaction, b *booking.Booking) State {
	var s State
	if tx != nil {
		s.Payment = tx.Status
	}
	if b != nil {
		s.Booking = b.Status
		s.BookingPayment = b.PaymentStatus
		s.AwaitingVerification = b.AwaitingVerification
	}
	return s
}

// Settle applies ev and stamps both records. The booking may be nil when the
// order no longer resolves; the transaction is still settled.
func Settle(tx *payments.Transaction, b *booking.Booking, ev Event, now time.Time) (State, error) {
	if tx == nil {
		return State{}, ErrTransactionRequired
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	before := StateOf(tx, b)
	after, err := Apply(before, ev)
	if err != nil {
		return before, err
	}
	if before.Payment == payments.StatusCompleted && after == before {
		return after, nil
	}

	stampTransaction(tx, ev, after, now)
	if b != nil {
		stampBooking(b, tx, ev, after, now)
	}
	return after, nil
}

func stampTransaction(tx *payments.Transaction, ev Event, s State, now time.Time) {
	changed := tx.Status != s.Payment
	tx.Status = s.Payment
	if ev.TransactionID != "" {
		tx.TransactionID = ev.TransactionID
	}
	if ev.BankTransactionID != "" {
		tx.BankTransactionID = ev.BankTransactionID
	}
	if ev.Payload != nil {
		tx.Details = clonePayload(ev.Payload)
	}
	if ev.Reason != "" {
		if tx.Details == nil {
			tx.Details = map[string]any{}
		}
		tx.Details["error"] = ev.Reason
	}
	tx.UpdatedAt = now
	if changed {
		tx.Record(payments.StatusChanged{
			TransactionID: tx.ID,
			OrderID:       tx.OrderID,
			Method:        tx.Method,
			Status:        tx.Status,
			AmountTk:      tx.Amount.Amount,
			At:            now,
		})
	}
}

func stampBooking(b *booking.Booking, tx *payments.Transaction, ev Event, s State, now time.Time) {
	changed := b.Status != s.Booking || b.PaymentStatus != s.BookingPayment || b.AwaitingVerification != s.AwaitingVerification
	if !changed {
		return
	}
	b.Status = s.Booking
	b.PaymentStatus = s.BookingPayment
	b.AwaitingVerification = s.AwaitingVerification
	if s.BookingPayment == booking.PaymentPaid && ev.Succeeded() {
		b.TransactionID = tx.TransactionID
		if tx.BankTransactionID != "" {
			b.BankTransactionID = tx.BankTransactionID
		}
	}
	b.UpdatedAt = now
	b.Record(booking.PaymentStateChanged{
		BookingID:            b.ID,
		Status:               b.Status,
		PaymentStatus:        b.PaymentStatus,
		AwaitingVerification: b.AwaitingVerification,
		TransactionID:        b.TransactionID,
		At:                   now,
	})
}

func clonePayload(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
