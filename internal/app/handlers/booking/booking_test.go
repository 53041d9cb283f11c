package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	"gowaay/internal/domain/pricing"
	domainrooms "gowaay/internal/domain/rooms"
	"gowaay/internal/infra/storage/memory"
)

func seedRoom(t *testing.T, f memory.Factory, approved bool) *domainrooms.Room {
	t.Helper()
	params := domainrooms.CreateParams{
		ID:     "room-1",
		HostID: "host-1",
		Details: domainrooms.Details{
			Title:        "Hill view",
			Description:  "Bandarban retreat",
			Address:      "Main road",
			LocationName: "Bandarban",
			MaxGuests:    2,
		},
		BasePriceTk: 3000,
		Rule:        pricing.TieredRule{},
	}
	var (
		room *domainrooms.Room
		err  error
	)
	if approved {
		room, err = domainrooms.NewAdminRoom(params)
	} else {
		room, err = domainrooms.NewRoom(params)
	}
	require.NoError(t, err)
	require.NoError(t, f.RoomsRepo.Save(context.Background(), room))
	return room
}

func stay(nights int) (time.Time, time.Time) {
	checkIn := time.Now().UTC().Add(72 * time.Hour)
	return checkIn, checkIn.Add(time.Duration(nights) * 24 * time.Hour)
}

func TestRequestBookingPricesPerNight(t *testing.T) {
	f := memory.NewFactory(nil)
	room := seedRoom(t, f, true)
	out := memory.NewOutbox()
	h := &RequestBookingHandler{UoWFactory: f, Outbox: out}

	in, outDate := stay(3)
	res, err := h.Handle(context.Background(), RequestBookingCommand{
		CommandID: "b-1",
		RoomID:    string(room.ID),
		UserID:    "guest-1",
		CheckIn:   in,
		CheckOut:  outDate,
		Guests:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Nights)
	assert.Equal(t, room.TotalPriceTk*3, res.AmountTk)
	assert.Equal(t, "Hill view", res.RoomTitle)
	assert.Equal(t, string(domainbooking.StatusPending), res.Status)
	assert.Equal(t, string(domainbooking.PaymentPending), res.PaymentStatus)
	require.Len(t, out.Records(), 1)
	assert.Equal(t, "booking.requested", out.Records()[0].Name)
}

func TestRequestBookingRejectsInvalidRequests(t *testing.T) {
	f := memory.NewFactory(nil)
	seedRoom(t, f, false)
	h := &RequestBookingHandler{UoWFactory: f}
	in, outDate := stay(1)

	_, err := h.Handle(context.Background(), RequestBookingCommand{CommandID: "b", RoomID: "room-1", UserID: "g", CheckIn: in, CheckOut: outDate, Guests: 1})
	assert.ErrorIs(t, err, domainrooms.ErrNotBookable)

	_, err = h.Handle(context.Background(), RequestBookingCommand{CommandID: "b", RoomID: "missing", UserID: "g", CheckIn: in, CheckOut: outDate, Guests: 1})
	assert.ErrorIs(t, err, domainrooms.ErrNotFound)

	past := time.Now().UTC().Add(-72 * time.Hour)
	_, err = h.Handle(context.Background(), RequestBookingCommand{CommandID: "b", RoomID: "room-1", UserID: "g", CheckIn: past, CheckOut: past.Add(24 * time.Hour), Guests: 1})
	assert.ErrorIs(t, err, domainbooking.ErrCheckInInPast)
}

func TestCancelAndListBookings(t *testing.T) {
	f := memory.NewFactory(nil)
	room := seedRoom(t, f, true)
	request := &RequestBookingHandler{UoWFactory: f}
	in, outDate := stay(2)
	created, err := request.Handle(context.Background(), RequestBookingCommand{CommandID: "b-1", RoomID: string(room.ID), UserID: "guest-1", CheckIn: in, CheckOut: outDate, Guests: 1})
	require.NoError(t, err)

	unit, err := f.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.Bind(context.Background(), unit)

	cancel := &CancelBookingHandler{}
	_, err = cancel.Handle(ctx, CancelBookingCommand{UserID: "guest-2", BookingID: created.ID})
	assert.ErrorIs(t, err, ErrBookingNotOwned)

	res, err := cancel.Handle(ctx, CancelBookingCommand{UserID: "guest-1", BookingID: created.ID, Reason: "plans changed"})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusCancelled), res.Status)

	list := &ListMyBookingsHandler{UoWFactory: f}
	page, err := list.Handle(context.Background(), ListMyBookingsQuery{UserID: "guest-1"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Room)
	assert.Equal(t, "Bandarban", page.Items[0].Room.LocationName)

	page, err = list.Handle(context.Background(), ListMyBookingsQuery{UserID: "guest-1", Status: "confirmed"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
