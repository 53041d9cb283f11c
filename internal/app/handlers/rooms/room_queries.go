package rooms

import (
	"context"
	"errors"

	"gowaay/internal/app/actor"
	"gowaay/internal/app/dto"
	"gowaay/internal/app/handlers/support"
	"gowaay/internal/app/queries"
	"gowaay/internal/app/uow"
	domainhosts "gowaay/internal/domain/hosts"
	"gowaay/internal/domain/pricing"
	domainrooms "gowaay/internal/domain/rooms"
)

const (
	listRoomsKey       = "rooms.list"
	getRoomKey         = "rooms.get"
	myRoomsKey         = "rooms.mine"
	commissionQuoteKey = "rooms.commission_quote"
)

// ListRoomsQuery pages through approved rooms.
type ListRoomsQuery struct {
	Page dto.PageRequest
}

func (q ListRoomsQuery) Key() string { return listRoomsKey }

type ListRoomsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRoomsHandler) Handle(ctx context.Context, q ListRoomsQuery) (*dto.Page[dto.Room], error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	req := q.Page.Normalize(dto.DefaultPageLimit)
	return listRooms(execCtx, unit, domainrooms.ListParams{
		Status: domainrooms.StatusApproved,
		Limit:  req.Limit,
		Offset: req.Offset(),
	}, req)
}

// MyRoomsQuery lists every room of the caller's host profile regardless of status.
type MyRoomsQuery struct {
	UserID string
	Page   dto.PageRequest
}

func (q MyRoomsQuery) Key() string { return myRoomsKey }

type MyRoomsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *MyRoomsHandler) Handle(ctx context.Context, q MyRoomsQuery) (*dto.Page[dto.Room], error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	host, err := unit.Hosts().ByUser(execCtx, q.UserID)
	if err != nil {
		return nil, err
	}
	req := q.Page.Normalize(dto.DefaultPageLimit)
	return listRooms(execCtx, unit, domainrooms.ListParams{
		HostID: host.ID,
		Limit:  req.Limit,
		Offset: req.Offset(),
	}, req)
}

func listRooms(ctx context.Context, unit uow.UnitOfWork, params domainrooms.ListParams, req dto.PageRequest) (*dto.Page[dto.Room], error) {
	items, total, err := unit.Rooms().List(ctx, params)
	if err != nil {
		return nil, err
	}
	ids := make([]domainhosts.ID, 0, len(items))
	for _, room := range items {
		ids = append(ids, room.HostID)
	}
	hostsByID, err := support.HostsByID(ctx, unit.Hosts(), ids)
	if err != nil {
		return nil, err
	}
	page := &dto.Page[dto.Room]{Items: make([]dto.Room, 0, len(items)), Pagination: dto.NewPagination(req, total)}
	for _, room := range items {
		page.Items = append(page.Items, dto.MapRoom(room, hostsByID[room.HostID]))
	}
	return page, nil
}

// GetRoomQuery returns approved rooms to everyone; other statuses only to the owner and admins.
type GetRoomQuery struct {
	RoomID string
}

func (q GetRoomQuery) Key() string { return getRoomKey }

type GetRoomHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetRoomHandler) Handle(ctx context.Context, q GetRoomQuery) (*dto.Room, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	room, err := unit.Rooms().ByID(execCtx, domainrooms.ID(q.RoomID))
	if err != nil {
		return nil, err
	}
	host, err := unit.Hosts().ByID(execCtx, room.HostID)
	if err != nil && !errors.Is(err, domainhosts.ErrNotFound) {
		return nil, err
	}
	if !room.IsBookable() && !canSeeUnpublished(ctx, host) {
		return nil, domainrooms.ErrNotFound
	}
	result := dto.MapRoom(room, host)
	return &result, nil
}

func canSeeUnpublished(ctx context.Context, host *domainhosts.Profile) bool {
	a, ok := actor.FromContext(ctx)
	if !ok || a.UserID == "" {
		return false
	}
	if a.HasRole("admin") {
		return true
	}
	return host != nil && host.UserID == a.UserID
}

// CommissionQuoteQuery previews the host commission for a base price.
type CommissionQuoteQuery struct {
	BasePriceTk int64
}

func (q CommissionQuoteQuery) Key() string { return commissionQuoteKey }

type CommissionQuoteHandler struct {
	Rule pricing.Rule
}

func (h *CommissionQuoteHandler) Handle(ctx context.Context, q CommissionQuoteQuery) (*pricing.Quote, error) {
	quote, err := pricing.QuoteWith(h.Rule, q.BasePriceTk)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

var (
	_ queries.Handler[ListRoomsQuery, *dto.Page[dto.Room]]  = (*ListRoomsHandler)(nil)
	_ queries.Handler[MyRoomsQuery, *dto.Page[dto.Room]]    = (*MyRoomsHandler)(nil)
	_ queries.Handler[GetRoomQuery, *dto.Room]              = (*GetRoomHandler)(nil)
	_ queries.Handler[CommissionQuoteQuery, *pricing.Quote] = (*CommissionQuoteHandler)(nil)
)
