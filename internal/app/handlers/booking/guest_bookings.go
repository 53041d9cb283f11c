package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	handlersupport "gowaay/internal/app/handlers/support"
	"gowaay/internal/app/outbox"
	"gowaay/internal/app/queries"
	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	domainrooms "gowaay/internal/domain/rooms"
)

const (
	listMyBookingsKey = "booking.mine"
	cancelBookingKey  = "booking.cancel"
)

var ErrBookingNotOwned = errors.New("booking: not owned by caller")

type ListMyBookingsQuery struct {
	UserID string
	Status string
	Page   dto.PageRequest
}

func (q ListMyBookingsQuery) Key() string { return listMyBookingsKey }

type ListMyBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) (*dto.Page[dto.Booking], error) {
	userID := strings.TrimSpace(q.UserID)
	if userID == "" {
		return nil, domainbooking.ErrUserRequired
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	status, _ := domainbooking.ParseStatus(q.Status)
	req := q.Page.Normalize(dto.DefaultPageLimit)
	items, total, err := unit.Bookings().List(execCtx, domainbooking.ListParams{
		UserID: userID,
		Status: status,
		Limit:  req.Limit,
		Offset: req.Offset(),
	})
	if err != nil {
		return nil, err
	}

	roomIDs := make([]domainrooms.ID, 0, len(items))
	for _, b := range items {
		roomIDs = append(roomIDs, b.RoomID)
	}
	roomsByID, err := handlersupport.RoomsByID(execCtx, unit.Rooms(), roomIDs)
	if err != nil {
		return nil, err
	}

	page := &dto.Page[dto.Booking]{Items: make([]dto.Booking, 0, len(items)), Pagination: dto.NewPagination(req, total)}
	for _, b := range items {
		room, ok := roomsByID[b.RoomID]
		if !ok && h.Logger != nil {
			h.Logger.WarnContext(execCtx, "room missing for booking", "booking_id", b.ID, "room_id", b.RoomID)
		}
		page.Items = append(page.Items, dto.MapBookingDetail(b, room, nil))
	}
	return page, nil
}

type CancelBookingCommand struct {
	UserID    string `validate:"required"`
	BookingID string `validate:"required"`
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

// Handle cancels an unpaid booking owned by the caller.
func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if b.UserID != cmd.UserID {
		return nil, ErrBookingNotOwned
	}
	if err := b.Cancel(cmd.Reason, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, b); err != nil {
		return nil, err
	}
	result := dto.MapBooking(b)
	return &result, nil
}

var (
	_ queries.Handler[ListMyBookingsQuery, *dto.Page[dto.Booking]] = (*ListMyBookingsHandler)(nil)
	_ commands.Handler[CancelBookingCommand, *dto.Booking]         = (*CancelBookingHandler)(nil)
)
