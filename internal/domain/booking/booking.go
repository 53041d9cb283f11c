package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"gowaay/internal/domain/hosts"
	"gowaay/internal/domain/rooms"
	"gowaay/internal/domain/shared/daterange"
	"gowaay/internal/domain/shared/events"
	"gowaay/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrInvalidGuests     = errors.New("booking: guests count must be positive")
	ErrGuestsExceedRoom  = errors.New("booking: guests exceed room capacity")
	ErrUserRequired      = errors.New("booking: user id is required")
	ErrInvalidState      = errors.New("booking: invalid state transition")
	ErrAlreadyPaid       = errors.New("booking: booking is already paid")
	ErrNotAwaitingReview = errors.New("booking: no manual payment awaiting verification")
	ErrTxnIDRequired     = errors.New("booking: manual transaction id is required")
	ErrAmountMismatch    = errors.New("booking: amount does not match booking total")
	ErrDatesUnavailable  = errors.New("booking: room is unavailable for the selected dates")
	ErrConcurrentUpdate  = errors.New("booking: concurrent update detected")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

// ManualPayment is a guest-submitted mobile banking transfer waiting for admin review.
type ManualPayment struct {
	TxnID       string
	Method      string
	AmountTk    int64
	SubmittedAt time.Time
}

// Booking captures room, host and price at creation; later room edits do not cascade.
type Booking struct {
	ID                   ID
	RoomID               rooms.ID
	RoomTitle            string
	HostID               hosts.ID
	UserID               string
	Range                daterange.DateRange
	Guests               int
	Nights               int
	Amount               money.Money
	Status               Status
	PaymentStatus        PaymentStatus
	TransactionID        string
	BankTransactionID    string
	ManualPayment        *ManualPayment
	AwaitingVerification bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int64
	events.Recorder
}

type ListParams struct {
	UserID        string
	Status        Status
	PaymentStatus PaymentStatus
	Limit         int
	Offset        int
}

// UserTotals aggregates a user's bookings for admin listings.
type UserTotals struct {
	Bookings   int
	TotalSpent int64
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	List(ctx context.Context, params ListParams) ([]*Booking, int, error)
	Count(ctx context.Context, status Status) (int, error)
	// Revenue sums Amount over payable bookings.
	Revenue(ctx context.Context) (int64, error)
	TotalsByUser(ctx context.Context, userIDs []string) (map[string]UserTotals, error)
}

type CreateParams struct {
	ID     ID
	Room   *rooms.Room
	UserID string
	Range  daterange.DateRange
	Guests int
	Now    time.Time
}

// NewBooking prices the stay at the room's total per night.
func NewBooking(params CreateParams) (*Booking, error) {
	room := params.Room
	if room == nil {
		return nil, rooms.ErrNotFound
	}
	if !room.IsBookable() {
		return nil, rooms.ErrNotBookable
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if room.MaxGuests > 0 && params.Guests > room.MaxGuests {
		return nil, ErrGuestsExceedRoom
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	for _, blocked := range room.UnavailableDates {
		if params.Range.Contains(blocked) {
			return nil, ErrDatesUnavailable
		}
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	nights := params.Range.Nights()
	b := &Booking{
		ID:            params.ID,
		RoomID:        room.ID,
		RoomTitle:     room.Title,
		HostID:        room.HostID,
		UserID:        strings.TrimSpace(params.UserID),
		Range:         params.Range,
		Guests:        params.Guests,
		Nights:        nights,
		Amount:        money.Tk(room.TotalPriceTk).Multiply(int64(nights)),
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingRequested{BookingID: b.ID, RoomID: b.RoomID, UserID: b.UserID, AmountTk: b.Amount.Amount, Nights: nights, At: now})
	return b, nil
}

// IsPayable reports whether the booking counts towards revenue.
func (b *Booking) IsPayable() bool {
	return b.Status == StatusConfirmed && b.PaymentStatus == PaymentPaid
}

// AcceptsPayment reports whether a new payment attempt may start.
func (b *Booking) AcceptsPayment() error {
	if b.Status == StatusCancelled {
		return ErrInvalidState
	}
	if b.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	return nil
}

// SubmitManualPayment records a transfer reference; it never marks the booking paid.
func (b *Booking) SubmitManualPayment(txnID, method string, amountTk int64, now time.Time) error {
	if err := b.AcceptsPayment(); err != nil {
		return err
	}
	txnID = strings.TrimSpace(txnID)
	if txnID == "" {
		return ErrTxnIDRequired
	}
	if amountTk != b.Amount.Amount {
		return ErrAmountMismatch
	}
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		method = "manual"
	}
	now = now.UTC()
	b.ManualPayment = &ManualPayment{TxnID: txnID, Method: method, AmountTk: amountTk, SubmittedAt: now}
	b.UpdatedAt = now
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status == StatusCancelled {
		return ErrInvalidState
	}
	if b.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	now = now.UTC()
	b.Status = StatusCancelled
	b.AwaitingVerification = false
	b.UpdatedAt = now
	b.Record(BookingCancelled{BookingID: b.ID, Reason: strings.TrimSpace(reason), At: now})
	return nil
}
