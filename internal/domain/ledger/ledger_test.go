package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/domain/booking"
	"gowaay/internal/domain/payments"
	"gowaay/internal/domain/shared/money"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func pendingState() State {
	return State{Payment: payments.StatusPending, Booking: booking.StatusPending, BookingPayment: booking.PaymentPending}
}

func fixtures(t *testing.T) (*payments.Transaction, *booking.Booking) {
	t.Helper()
	tx, err := payments.NewTransaction(payments.CreateParams{
		ID: "p-1", UserID: "u-1", OrderID: "b-1", Amount: money.Tk(2490), Method: payments.MethodSSLCommerz, Now: now,
	})
	require.NoError(t, err)
	tx.ClearEvents()
	b := &booking.Booking{ID: "b-1", UserID: "u-1", Amount: money.Tk(2490), Status: booking.StatusPending, PaymentStatus: booking.PaymentPending}
	return tx, b
}

func TestApplyTransitions(t *testing.T) {
	cases := []struct {
		name string
		from State
		ev   Event
		want State
		err  error
	}{
		{
			name: "session created",
			from: State{Booking: booking.StatusPending, BookingPayment: booking.PaymentPending},
			ev:   Event{Kind: SessionCreated},
			want: pendingState(),
		},
		{
			name: "session init failure leaves booking untouched",
			from: pendingState(),
			ev:   Event{Kind: SessionFailed, Reason: "timeout"},
			want: State{Payment: payments.StatusFailed, Booking: booking.StatusPending, BookingPayment: booking.PaymentPending},
		},
		{
			name: "verification VALID",
			from: pendingState(),
			ev:   Event{Kind: GatewayVerified, GatewayStatus: "VALID"},
			want: State{Payment: payments.StatusCompleted, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
		},
		{
			name: "verification VALIDATED",
			from: pendingState(),
			ev:   Event{Kind: GatewayVerified, GatewayStatus: "validated"},
			want: State{Payment: payments.StatusCompleted, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
		},
		{
			name: "verification failed",
			from: pendingState(),
			ev:   Event{Kind: GatewayVerified, GatewayStatus: "FAILED"},
			want: State{Payment: payments.StatusFailed, Booking: booking.StatusPending, BookingPayment: booking.PaymentFailed},
		},
		{
			name: "ipn VALIDATED is not success",
			from: pendingState(),
			ev:   Event{Kind: IPNReceived, GatewayStatus: "VALIDATED"},
			want: State{Payment: payments.StatusFailed, Booking: booking.StatusPending, BookingPayment: booking.PaymentFailed},
		},
		{
			name: "late VALID ipn after failure",
			from: State{Payment: payments.StatusFailed, Booking: booking.StatusPending, BookingPayment: booking.PaymentFailed},
			ev:   Event{Kind: IPNReceived, GatewayStatus: "VALID"},
			want: State{Payment: payments.StatusCompleted, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
		},
		{
			name: "failure on completed is rejected",
			from: State{Payment: payments.StatusCompleted, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
			ev:   Event{Kind: IPNReceived, GatewayStatus: "FAILED"},
			want: State{Payment: payments.StatusCompleted, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
			err:  ErrAlreadyCompleted,
		},
		{
			name: "success on cancelled booking keeps it cancelled",
			from: State{Payment: payments.StatusPending, Booking: booking.StatusCancelled, BookingPayment: booking.PaymentPending},
			ev:   Event{Kind: IPNReceived, GatewayStatus: "VALID"},
			want: State{Payment: payments.StatusCompleted, Booking: booking.StatusCancelled, BookingPayment: booking.PaymentPaid},
		},
		{
			name: "manual submission",
			from: State{Booking: booking.StatusPending, BookingPayment: booking.PaymentFailed},
			ev:   Event{Kind: ManualSubmitted, TransactionID: "8N7A6D5"},
			want: State{Payment: payments.StatusPending, Booking: booking.StatusPending, BookingPayment: booking.PaymentPending, AwaitingVerification: true},
		},
		{
			name: "manual submission on paid booking",
			from: State{Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
			ev:   Event{Kind: ManualSubmitted},
			want: State{Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
			err:  ErrBookingPaid,
		},
		{
			name: "manual approval",
			from: State{Payment: payments.StatusPending, Booking: booking.StatusPending, BookingPayment: booking.PaymentPending, AwaitingVerification: true},
			ev:   Event{Kind: ManualApproved},
			want: State{Payment: payments.StatusCompleted, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
		},
		{
			name: "manual rejection",
			from: State{Payment: payments.StatusPending, Booking: booking.StatusPending, BookingPayment: booking.PaymentPending, AwaitingVerification: true},
			ev:   Event{Kind: ManualRejected},
			want: State{Payment: payments.StatusFailed, Booking: booking.StatusPending, BookingPayment: booking.PaymentFailed},
		},
		{
			name: "gateway failure while manual transfer awaits review",
			from: State{Payment: payments.StatusPending, Booking: booking.StatusPending, BookingPayment: booking.PaymentPending, AwaitingVerification: true},
			ev:   Event{Kind: IPNReceived, GatewayStatus: "FAILED"},
			want: State{Payment: payments.StatusFailed, Booking: booking.StatusPending, BookingPayment: booking.PaymentPending, AwaitingVerification: true},
		},
		{
			name: "superseded attempt leaves booking alone",
			from: State{Payment: payments.StatusPending, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
			ev:   Event{Kind: Superseded, Reason: "paid by another attempt"},
			want: State{Payment: payments.StatusFailed, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
		},
		{
			name: "superseded after completion",
			from: State{Payment: payments.StatusCompleted, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
			ev:   Event{Kind: Superseded},
			want: State{Payment: payments.StatusCompleted, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid},
			err:  ErrAlreadyCompleted,
		},
		{
			name: "manual approval without submission",
			from: pendingState(),
			ev:   Event{Kind: ManualApproved},
			want: pendingState(),
			err:  ErrNotAwaitingVerification,
		},
		{
			name: "unknown event",
			from: pendingState(),
			ev:   Event{Kind: "refund"},
			want: pendingState(),
			err:  ErrUnknownEvent,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(tc.from, tc.ev)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompletedIsAbsorbing(t *testing.T) {
	completed := State{Payment: payments.StatusCompleted, Booking: booking.StatusConfirmed, BookingPayment: booking.PaymentPaid}
	events := []Event{
		{Kind: SessionCreated},
		{Kind: SessionFailed},
		{Kind: GatewayVerified, GatewayStatus: "INVALID_TRANSACTION"},
		{Kind: IPNReceived, GatewayStatus: "CANCELLED"},
		{Kind: ManualSubmitted},
		{Kind: ManualRejected},
		{Kind: GatewayVerified, GatewayStatus: "VALID"},
		{Kind: IPNReceived, GatewayStatus: "VALID"},
		{Kind: ManualApproved},
	}
	for _, ev := range events {
		got, _ := Apply(completed, ev)
		assert.Equal(t, completed, got, "event %s/%s", ev.Kind, ev.GatewayStatus)
	}
}

func TestSettleValidIPNStampsBooking(t *testing.T) {
	tx, b := fixtures(t)
	payload := map[string]any{"status": "VALID", "val_id": "VAL123", "bank_tran_id": "BANK9"}

	state, err := Settle(tx, b, Event{
		Kind:              IPNReceived,
		GatewayStatus:     "VALID",
		TransactionID:     "VAL123",
		BankTransactionID: "BANK9",
		Payload:           payload,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, payments.StatusCompleted, state.Payment)
	assert.Equal(t, payments.StatusCompleted, tx.Status)
	assert.Equal(t, "VAL123", tx.TransactionID)
	assert.Equal(t, "BANK9", tx.BankTransactionID)
	assert.Equal(t, "VALID", tx.Details["status"])

	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, booking.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, "VAL123", b.TransactionID)
	assert.Equal(t, "BANK9", b.BankTransactionID)
	assert.True(t, b.IsPayable())

	require.Len(t, tx.PendingEvents(), 1)
	assert.Equal(t, "payment.completed", tx.PendingEvents()[0].EventName())
	require.Len(t, b.PendingEvents(), 1)
	assert.Equal(t, "booking.payment_paid", b.PendingEvents()[0].EventName())
}

func TestSettleSameIPNTwiceIsIdempotent(t *testing.T) {
	tx, b := fixtures(t)
	ev := Event{Kind: IPNReceived, GatewayStatus: "VALID", TransactionID: "VAL1", BankTransactionID: "B1", Payload: map[string]any{"status": "VALID"}}

	_, err := Settle(tx, b, ev, now)
	require.NoError(t, err)
	firstTx, firstBooking := *tx, *b
	tx.ClearEvents()
	b.ClearEvents()

	_, err = Settle(tx, b, ev, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, firstTx.Status, tx.Status)
	assert.Equal(t, firstTx.UpdatedAt, tx.UpdatedAt)
	assert.Equal(t, firstBooking.Status, b.Status)
	assert.Equal(t, firstBooking.PaymentStatus, b.PaymentStatus)
	assert.Empty(t, tx.PendingEvents())
	assert.Empty(t, b.PendingEvents())
}

func TestSettleFailedIPNAfterCompletion(t *testing.T) {
	tx, b := fixtures(t)
	_, err := Settle(tx, b, Event{Kind: IPNReceived, GatewayStatus: "VALID", TransactionID: "V"}, now)
	require.NoError(t, err)

	_, err = Settle(tx, b, Event{Kind: IPNReceived, GatewayStatus: "FAILED", Payload: map[string]any{"status": "FAILED"}}, now)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, payments.StatusCompleted, tx.Status)
	assert.Equal(t, booking.PaymentPaid, b.PaymentStatus)
	assert.NotEqual(t, "FAILED", tx.Details["status"])
}

func TestSettleSessionFailureRecordsReason(t *testing.T) {
	tx, b := fixtures(t)
	_, err := Settle(tx, b, Event{Kind: SessionFailed, Reason: "SSL Commerce initialization failed"}, now)
	require.NoError(t, err)
	assert.Equal(t, payments.StatusFailed, tx.Status)
	assert.Equal(t, "SSL Commerce initialization failed", tx.Details["error"])
	assert.Equal(t, booking.PaymentPending, b.PaymentStatus)
	assert.Empty(t, b.PendingEvents())
}

func TestSettleWithoutBooking(t *testing.T) {
	tx, _ := fixtures(t)
	state, err := Settle(tx, nil, Event{Kind: GatewayVerified, GatewayStatus: "VALID", TransactionID: "p-1"}, now)
	require.NoError(t, err)
	assert.Equal(t, payments.StatusCompleted, state.Payment)
	assert.Equal(t, "p-1", tx.TransactionID)

	_, err = Settle(nil, nil, Event{Kind: SessionCreated}, now)
	assert.ErrorIs(t, err, ErrTransactionRequired)
}

func TestSettleManualFlow(t *testing.T) {
	tx, b := fixtures(t)
	tx.Method = payments.MethodManual

	_, err := Settle(tx, b, Event{Kind: ManualSubmitted, TransactionID: "BK123"}, now)
	require.NoError(t, err)
	assert.True(t, b.AwaitingVerification)
	assert.Equal(t, booking.PaymentPending, b.PaymentStatus)
	assert.Equal(t, payments.StatusPending, tx.Status)
	assert.Equal(t, "BK123", tx.TransactionID)
	assert.Empty(t, b.TransactionID)

	_, err = Settle(tx, b, Event{Kind: ManualApproved}, now)
	require.NoError(t, err)
	assert.False(t, b.AwaitingVerification)
	assert.Equal(t, booking.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, "BK123", b.TransactionID)
}
