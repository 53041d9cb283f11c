package admin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gowaay/internal/app/actor"
	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	roomsapp "gowaay/internal/app/handlers/rooms"
	"gowaay/internal/app/outbox"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/uow"
	domainhosts "gowaay/internal/domain/hosts"
	domainrooms "gowaay/internal/domain/rooms"
	domainuser "gowaay/internal/domain/user"
)

const (
	moderateHostKey = "admin.hosts.moderate"
	moderateRoomKey = "admin.rooms.moderate"
	assignHostKey   = "admin.rooms.assign_host"
	createRoomKey   = "admin.rooms.create"
)

type ModerateHostCommand struct {
	HostID  string `validate:"required"`
	Approve bool
	Note    string
}

func (ModerateHostCommand) Key() string { return moderateHostKey }

func (ModerateHostCommand) RequiredRole() string { return roleAdmin }

type ModerateHostHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle sets the host status. Rooms of the host keep their own status.
func (h *ModerateHostHandler) Handle(ctx context.Context, cmd ModerateHostCommand) (*dto.HostModeration, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := unit.Hosts().ByID(ctx, domainhosts.ID(cmd.HostID))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if cmd.Approve {
		err = profile.Approve(cmd.Note, now)
	} else {
		err = profile.Reject(cmd.Note, now)
	}
	if err != nil {
		return nil, err
	}
	if err := unit.Hosts().Save(ctx, profile); err != nil {
		return nil, err
	}
	if cmd.Approve {
		if err := grantHostRole(ctx, unit, profile.UserID, now); err != nil {
			return nil, err
		}
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, profile); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "host moderated", "host_id", profile.ID, "status", profile.Status)
	}
	return &dto.HostModeration{ID: string(profile.ID), Status: string(profile.Status), UpdatedAt: profile.UpdatedAt}, nil
}

func grantHostRole(ctx context.Context, unit uow.UnitOfWork, userID string, now time.Time) error {
	u, err := unit.Users().ByID(ctx, domainuser.ID(userID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.HasRole(domainuser.RoleHost) {
		return nil
	}
	if err := u.Grant(domainuser.RoleHost, now); err != nil {
		return err
	}
	return unit.Users().Save(ctx, u)
}

type ModerateRoomCommand struct {
	RoomID       string `validate:"required"`
	Approve      bool
	CommissionTk int64 `validate:"gte=0"`
	Note         string
}

func (ModerateRoomCommand) Key() string { return moderateRoomKey }

func (ModerateRoomCommand) RequiredRole() string { return roleAdmin }

type ModerateRoomHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle approves or rejects a room. A positive commission replaces the stored one
// and the total is recomputed.
func (h *ModerateRoomHandler) Handle(ctx context.Context, cmd ModerateRoomCommand) (*dto.RoomModeration, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	room, err := unit.Rooms().ByID(ctx, domainrooms.ID(cmd.RoomID))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if cmd.Approve {
		if err := room.Approve(cmd.CommissionTk, now); err != nil {
			return nil, err
		}
	} else {
		room.Reject(cmd.Note, now)
	}
	if err := unit.Rooms().Save(ctx, room); err != nil {
		return nil, err
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, room); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "room moderated", "room_id", room.ID, "status", room.Status, "commission_tk", room.CommissionTk, "total_tk", room.TotalPriceTk)
	}
	result := dto.MapRoomModeration(room)
	return &result, nil
}

type AssignHostCommand struct {
	RoomID string `validate:"required"`
	HostID string `validate:"required"`
}

func (AssignHostCommand) Key() string { return assignHostKey }

func (AssignHostCommand) RequiredRole() string { return roleAdmin }

type AssignHostHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *AssignHostHandler) Handle(ctx context.Context, cmd AssignHostCommand) (*dto.Room, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	room, err := unit.Rooms().ByID(ctx, domainrooms.ID(cmd.RoomID))
	if err != nil {
		return nil, err
	}
	current, err := unit.Hosts().ByID(ctx, room.HostID)
	if err != nil && !errors.Is(err, domainhosts.ErrNotFound) {
		return nil, err
	}
	target, err := unit.Hosts().ByID(ctx, domainhosts.ID(cmd.HostID))
	if err != nil {
		return nil, err
	}
	if err := room.AssignHost(current, target, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Rooms().Save(ctx, room); err != nil {
		return nil, err
	}
	if err := outbox.RecordAggregates(ctx, h.Outbox, h.Encoder, room); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "room host assigned", "room_id", room.ID, "host_id", target.ID)
	}
	result := dto.MapRoom(room, target)
	return &result, nil
}

// CreateRoomCommand publishes a room directly under the system host.
type CreateRoomCommand struct {
	BasePriceTk int64 `validate:"gt=0"`
	Room        roomsapp.RoomInput
}

func (CreateRoomCommand) Key() string { return createRoomKey }

func (CreateRoomCommand) RequiredRole() string { return roleAdmin }

type CreateRoomHandler struct {
	Rules   policies.CommissionRules
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CreateRoomHandler) Handle(ctx context.Context, cmd CreateRoomCommand) (*dto.Room, error) {
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	host, err := h.systemHost(ctx, unit, now)
	if err != nil {
		return nil, err
	}
	room, err := domainrooms.NewAdminRoom(domainrooms.CreateParams{
		ID:          domainrooms.ID(uuid.NewString()),
		HostID:      host.ID,
		Details:     cmd.Room.Details(),
		BasePriceTk: cmd.BasePriceTk,
		Rule:        h.Rules.ForAdminRoom(),
		Now:         now,
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
		h.Logger.InfoContext(ctx, "admin room created", "room_id", room.ID, "commission_rule", h.Rules.ForAdminRoom().Name(), "total_tk", room.TotalPriceTk)
	}
	result := dto.MapRoom(room, host)
	return &result, nil
}

// systemHost returns the placeholder host, creating it on first use for the calling admin.
func (h *CreateRoomHandler) systemHost(ctx context.Context, unit uow.UnitOfWork, now time.Time) (*domainhosts.Profile, error) {
	host, err := unit.Hosts().SystemHost(ctx)
	if err == nil {
		return host, nil
	}
	if !errors.Is(err, domainhosts.ErrNotFound) {
		return nil, err
	}
	a, _ := actor.FromContext(ctx)
	host = domainhosts.NewSystemHost(domainhosts.ID(uuid.NewString()), a.UserID, now)
	if err := unit.Hosts().Save(ctx, host); err != nil {
		return nil, err
	}
	return host, nil
}

var (
	_ commands.Handler[ModerateHostCommand, *dto.HostModeration] = (*ModerateHostHandler)(nil)
	_ commands.Handler[ModerateRoomCommand, *dto.RoomModeration] = (*ModerateRoomHandler)(nil)
	_ commands.Handler[AssignHostCommand, *dto.Room]             = (*AssignHostHandler)(nil)
	_ commands.Handler[CreateRoomCommand, *dto.Room]             = (*CreateRoomHandler)(nil)
)
