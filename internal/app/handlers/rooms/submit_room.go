package rooms

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	"gowaay/internal/app/outbox"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/uow"
	domainhosts "gowaay/internal/domain/hosts"
	domainrooms "gowaay/internal/domain/rooms"
)

const (
	submitRoomKey = "rooms.submit"
	updateRoomKey = "rooms.update"
)

var (
	ErrNotHost       = errors.New("rooms: caller has no host profile")
	ErrRoomNotOwned  = errors.New("rooms: room belongs to another host")
	ErrHostNotActive = errors.New("rooms: host profile is not approved")
)

// RoomInput is the host listing form.
type RoomInput struct {
	Title            string
	Description      string
	Address          string
	LocationName     string
	LocationMapURL   string
	RoomType         string
	Amenities        []string
	Images           []string
	MaxGuests        int
	Bedrooms         int
	Beds             int
	Baths            int
	InstantBooking   bool
	UnavailableDates []time.Time
}

func (in RoomInput) Details() domainrooms.Details {
	return domainrooms.Details{
		Title:            in.Title,
		Description:      in.Description,
		Address:          in.Address,
		LocationName:     in.LocationName,
		LocationMapURL:   in.LocationMapURL,
		RoomType:         in.RoomType,
		Amenities:        in.Amenities,
		Images:           in.Images,
		MaxGuests:        in.MaxGuests,
		Bedrooms:         in.Bedrooms,
		Beds:             in.Beds,
		Baths:            in.Baths,
		InstantBooking:   in.InstantBooking,
		UnavailableDates: in.UnavailableDates,
	}
}

type SubmitRoomCommand struct {
	UserID      string `validate:"required"`
	BasePriceTk int64  `validate:"gt=0"`
	Room        RoomInput
}

func (c SubmitRoomCommand) Key() string { return submitRoomKey }

type SubmitRoomHandler struct {
	Rules   policies.CommissionRules
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle prices the room with the host rule and queues it for moderation.
func (h *SubmitRoomHandler) Handle(ctx context.Context, cmd SubmitRoomCommand) (*dto.Room, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	host, err := approvedHost(ctx, unit, cmd.UserID)
	if err != nil {
		return nil, err
	}
	room, err := domainrooms.NewRoom(domainrooms.CreateParams{
		ID:          domainrooms.ID(uuid.NewString()),
		HostID:      host.ID,
		Details:     cmd.Room.Details(),
		BasePriceTk: cmd.BasePriceTk,
		Rule:        h.Rules.ForHostRoom(),
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Rooms().Save(ctx, room); err != nil {
		return nil, err
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, room); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "room submitted", "room_id", room.ID, "host_id", host.ID, "total_tk", room.TotalPriceTk)
	}
	result := dto.MapRoom(room, host)
	return &result, nil
}

type UpdateRoomCommand struct {
	UserID      string `validate:"required"`
	RoomID      string `validate:"required"`
	BasePriceTk int64  `validate:"gt=0"`
	Room        RoomInput
}

func (c UpdateRoomCommand) Key() string { return updateRoomKey }

type UpdateRoomHandler struct {
	Rules  policies.CommissionRules
	Logger *slog.Logger
}

// Handle lets a host edit their own room; the edit sends it back to moderation.
func (h *UpdateRoomHandler) Handle(ctx context.Context, cmd UpdateRoomCommand) (*dto.Room, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	host, err := approvedHost(ctx, unit, cmd.UserID)
	if err != nil {
		return nil, err
	}
	room, err := unit.Rooms().ByID(ctx, domainrooms.ID(strings.TrimSpace(cmd.RoomID)))
	if err != nil {
		return nil, err
	}
	if room.HostID != host.ID {
		return nil, ErrRoomNotOwned
	}
	if err := room.Update(cmd.Room.Details(), cmd.BasePriceTk, h.Rules.ForHostRoom(), time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Rooms().Save(ctx, room); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "room updated", "room_id", room.ID, "status", room.Status)
	}
	result := dto.MapRoom(room, host)
	return &result, nil
}

func approvedHost(ctx context.Context, unit uow.UnitOfWork, userID string) (*domainhosts.Profile, error) {
	host, err := unit.Hosts().ByUser(ctx, strings.TrimSpace(userID))
	if err != nil {
		if errors.Is(err, domainhosts.ErrNotFound) {
			return nil, ErrNotHost
		}
		return nil, err
	}
	if !host.IsApproved() {
		return nil, ErrHostNotActive
	}
	return host, nil
}

var (
	_ commands.Handler[SubmitRoomCommand, *dto.Room] = (*SubmitRoomHandler)(nil)
	_ commands.Handler[UpdateRoomCommand, *dto.Room] = (*UpdateRoomHandler)(nil)
)
