package booking

import (
	"context"
	"log/slog"
	"time"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	handlersupport "gowaay/internal/app/handlers/support"
	"gowaay/internal/app/middleware"
	"gowaay/internal/app/outbox"
	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	domainrooms "gowaay/internal/domain/rooms"
	domainrange "gowaay/internal/domain/shared/daterange"
)

type RequestBookingCommand struct {
	CommandID       string    `validate:"required"`
	RoomID          string    `validate:"required"`
	UserID          string    `validate:"required"`
	CheckIn         time.Time `validate:"required"`
	CheckOut        time.Time `validate:"required"`
	Guests          int       `validate:"gt=0"`
	IdempotencyKeyV string
}

func (RequestBookingCommand) Key() string { return "booking.request" }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (RequestBookingCommand) ResultPrototype() any { return &dto.Booking{} }

// RequestBookingHandler books an approved room at its current total price per
// night. It joins the unit bound by the transaction middleware and opens its
// own only when called directly.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.Booking, error) {
	stay, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := domainbooking.RequireUpcoming(stay, now); err != nil {
		return nil, err
	}

	var booked *domainbooking.Booking
	err = handlersupport.InUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		room, err := unit.Rooms().ByID(ctx, domainrooms.ID(cmd.RoomID))
		if err != nil {
			return err
		}
		b, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:     domainbooking.ID(cmd.CommandID),
			Room:   room,
			UserID: cmd.UserID,
			Range:  stay,
			Guests: cmd.Guests,
			Now:    now,
		})
		if err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		booked = b
		encoder := h.Encoder
		if encoder == nil {
			encoder = outbox.JSONEventEncoder{}
		}
		return outbox.RecordAggregates(ctx, h.Outbox, encoder, b)
	})
	if err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "booking requested",
			"booking_id", booked.ID, "room_id", booked.RoomID, "nights", booked.Nights, "amount_tk", booked.Amount.Amount)
	}
	result := dto.MapBooking(booked)
	return &result, nil
}

var (
	_ commands.Handler[RequestBookingCommand, *dto.Booking] = (*RequestBookingHandler)(nil)
	_ middleware.IdempotentCommand                          = RequestBookingCommand{}
)
