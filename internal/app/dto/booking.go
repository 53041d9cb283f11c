package dto

import (
	"time"

	domainbooking "gowaay/internal/domain/booking"
	domainrooms "gowaay/internal/domain/rooms"
	domainuser "gowaay/internal/domain/user"
)

type ManualPayment struct {
	TxnID       string    `json:"txnId"`
	Method      string    `json:"method"`
	AmountTk    int64     `json:"amountTk"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type RoomSummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	LocationName string   `json:"locationName"`
	Images       []string `json:"images"`
}

type Booking struct {
	ID                   string         `json:"id"`
	RoomID               string         `json:"roomId"`
	RoomTitle            string         `json:"roomTitle"`
	Room                 *RoomSummary   `json:"room,omitempty"`
	HostID               string         `json:"hostId"`
	UserID               string         `json:"userId"`
	User                 *UserSummary   `json:"user,omitempty"`
	CheckIn              time.Time      `json:"checkIn"`
	CheckOut             time.Time      `json:"checkOut"`
	Guests               int            `json:"guests"`
	Nights               int            `json:"nights"`
	AmountTk             int64          `json:"amountTk"`
	Currency             string         `json:"currency"`
	Status               string         `json:"status"`
	PaymentStatus        string         `json:"paymentStatus"`
	TransactionID        string         `json:"transactionId,omitempty"`
	BankTransactionID    string         `json:"bankTransactionId,omitempty"`
	AwaitingVerification bool           `json:"awaitingVerification"`
	ManualPayment        *ManualPayment `json:"manualPayment,omitempty"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	out := Booking{
		ID:                   string(b.ID),
		RoomID:               string(b.RoomID),
		RoomTitle:            b.RoomTitle,
		HostID:               string(b.HostID),
		UserID:               b.UserID,
		CheckIn:              b.Range.CheckIn,
		CheckOut:             b.Range.CheckOut,
		Guests:               b.Guests,
		Nights:               b.Nights,
		AmountTk:             b.Amount.Amount,
		Currency:             b.Amount.Currency,
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		TransactionID:        b.TransactionID,
		BankTransactionID:    b.BankTransactionID,
		AwaitingVerification: b.AwaitingVerification,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
	if mp := b.ManualPayment; mp != nil {
		out.ManualPayment = &ManualPayment{TxnID: mp.TxnID, Method: mp.Method, AmountTk: mp.AmountTk, SubmittedAt: mp.SubmittedAt}
	}
	return out
}

// MapBookingDetail adds the room and guest summaries used by admin listings.
func MapBookingDetail(b *domainbooking.Booking, room *domainrooms.Room, user *domainuser.User) Booking {
	out := MapBooking(b)
	if room != nil {
		out.Room = &RoomSummary{ID: string(room.ID), Title: room.Title, LocationName: room.LocationName, Images: nonNil(room.Images)}
	}
	out.User = MapUserSummary(user)
	return out
}
