package booking

import (
	"time"

	"gowaay/internal/domain/rooms"
)

type BookingRequested struct {
	BookingID ID        `json:"booking_id"`
	RoomID    rooms.ID  `json:"room_id"`
	UserID    string    `json:"user_id"`
	AmountTk  int64     `json:"amount_tk"`
	Nights    int       `json:"nights"`
	At        time.Time `json:"at"`
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

// PaymentStateChanged is recorded whenever the ledger moves the booking's payment state.
type PaymentStateChanged struct {
	BookingID            ID            `json:"booking_id"`
	Status               Status        `json:"status"`
	PaymentStatus        PaymentStatus `json:"payment_status"`
	AwaitingVerification bool          `json:"awaiting_verification"`
	TransactionID        string        `json:"transaction_id,omitempty"`
	At                   time.Time     `json:"at"`
}

func (e PaymentStateChanged) EventName() string     { return "booking.payment_" + string(e.PaymentStatus) }
func (e PaymentStateChanged) AggregateID() string   { return string(e.BookingID) }
func (e PaymentStateChanged) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID ID        `json:"booking_id"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
