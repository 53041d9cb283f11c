package admin

import (
	"context"

	"gowaay/internal/app/dto"
	"gowaay/internal/app/handlers/support"
	"gowaay/internal/app/queries"
	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	domainhosts "gowaay/internal/domain/hosts"
	domainrooms "gowaay/internal/domain/rooms"
	domainuser "gowaay/internal/domain/user"
)

const (
	roleAdmin = "admin"

	listHostsKey    = "admin.hosts.list"
	listRoomsKey    = "admin.rooms.list"
	listBookingsKey = "admin.bookings.list"
	listUsersKey    = "admin.users.list"

	// UsersPageLimit is the default page size of the user listing.
	UsersPageLimit = 20
)

type ListHostsQuery struct {
	Status string
	Page   dto.PageRequest
}

func (ListHostsQuery) Key() string { return listHostsKey }

func (ListHostsQuery) RequiredRole() string { return roleAdmin }

type ListHostsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHostsHandler) Handle(ctx context.Context, q ListHostsQuery) (*dto.Page[dto.Host], error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	status, _ := domainhosts.ParseStatus(q.Status)
	req := q.Page.Normalize(dto.DefaultPageLimit)
	items, total, err := unit.Hosts().List(execCtx, domainhosts.ListParams{Status: status, Limit: req.Limit, Offset: req.Offset()})
	if err != nil {
		return nil, err
	}
	userIDs := make([]string, 0, len(items))
	for _, p := range items {
		userIDs = append(userIDs, p.UserID)
	}
	users, err := support.UsersByID(execCtx, unit.Users(), userIDs)
	if err != nil {
		return nil, err
	}
	page := &dto.Page[dto.Host]{Items: make([]dto.Host, 0, len(items)), Pagination: dto.NewPagination(req, total)}
	for _, p := range items {
		page.Items = append(page.Items, dto.MapHost(p, users[p.UserID]))
	}
	return page, nil
}

type ListRoomsQuery struct {
	Status string
	Page   dto.PageRequest
}

func (ListRoomsQuery) Key() string { return listRoomsKey }

func (ListRoomsQuery) RequiredRole() string { return roleAdmin }

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
	status, _ := domainrooms.ParseStatus(q.Status)
	req := q.Page.Normalize(dto.DefaultPageLimit)
	items, total, err := unit.Rooms().List(execCtx, domainrooms.ListParams{Status: status, Limit: req.Limit, Offset: req.Offset()})
	if err != nil {
		return nil, err
	}
	hostIDs := make([]domainhosts.ID, 0, len(items))
	for _, r := range items {
		hostIDs = append(hostIDs, r.HostID)
	}
	hosts, err := support.HostsByID(execCtx, unit.Hosts(), hostIDs)
	if err != nil {
		return nil, err
	}
	page := &dto.Page[dto.Room]{Items: make([]dto.Room, 0, len(items)), Pagination: dto.NewPagination(req, total)}
	for _, r := range items {
		page.Items = append(page.Items, dto.MapRoom(r, hosts[r.HostID]))
	}
	return page, nil
}

type ListBookingsQuery struct {
	Status        string
	PaymentStatus string
	Page          dto.PageRequest
}

func (ListBookingsQuery) Key() string { return listBookingsKey }

func (ListBookingsQuery) RequiredRole() string { return roleAdmin }

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (*dto.Page[dto.Booking], error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	status, _ := domainbooking.ParseStatus(q.Status)
	req := q.Page.Normalize(dto.DefaultPageLimit)
	items, total, err := unit.Bookings().List(execCtx, domainbooking.ListParams{
		Status:        status,
		PaymentStatus: parsePaymentStatus(q.PaymentStatus),
		Limit:         req.Limit,
		Offset:        req.Offset(),
	})
	if err != nil {
		return nil, err
	}
	roomIDs := make([]domainrooms.ID, 0, len(items))
	userIDs := make([]string, 0, len(items))
	for _, b := range items {
		roomIDs = append(roomIDs, b.RoomID)
		userIDs = append(userIDs, b.UserID)
	}
	rooms, err := support.RoomsByID(execCtx, unit.Rooms(), roomIDs)
	if err != nil {
		return nil, err
	}
	users, err := support.UsersByID(execCtx, unit.Users(), userIDs)
	if err != nil {
		return nil, err
	}
	page := &dto.Page[dto.Booking]{Items: make([]dto.Booking, 0, len(items)), Pagination: dto.NewPagination(req, total)}
	for _, b := range items {
		page.Items = append(page.Items, dto.MapBookingDetail(b, rooms[b.RoomID], users[b.UserID]))
	}
	return page, nil
}

func parsePaymentStatus(raw string) domainbooking.PaymentStatus {
	switch s := domainbooking.PaymentStatus(raw); s {
	case domainbooking.PaymentPending, domainbooking.PaymentPaid, domainbooking.PaymentFailed:
		return s
	}
	return ""
}

type ListUsersQuery struct {
	Search string
	Page   dto.PageRequest
}

func (ListUsersQuery) Key() string { return listUsersKey }

func (ListUsersQuery) RequiredRole() string { return roleAdmin }

type ListUsersHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle lists users with their booking count and the sum of their paid, confirmed bookings.
func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) (*dto.Page[dto.AdminUser], error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	req := q.Page.Normalize(UsersPageLimit)
	items, total, err := unit.Users().List(execCtx, domainuser.ListParams{Query: q.Search, Limit: req.Limit, Offset: req.Offset()})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, u := range items {
		ids = append(ids, string(u.ID))
	}
	totals, err := unit.Bookings().TotalsByUser(execCtx, ids)
	if err != nil {
		return nil, err
	}
	page := &dto.Page[dto.AdminUser]{Items: make([]dto.AdminUser, 0, len(items)), Pagination: dto.NewPagination(req, total)}
	for _, u := range items {
		page.Items = append(page.Items, dto.MapAdminUser(u, totals[string(u.ID)]))
	}
	return page, nil
}

var (
	_ queries.Handler[ListHostsQuery, *dto.Page[dto.Host]]       = (*ListHostsHandler)(nil)
	_ queries.Handler[ListRoomsQuery, *dto.Page[dto.Room]]       = (*ListRoomsHandler)(nil)
	_ queries.Handler[ListBookingsQuery, *dto.Page[dto.Booking]] = (*ListBookingsHandler)(nil)
	_ queries.Handler[ListUsersQuery, *dto.Page[dto.AdminUser]]  = (*ListUsersHandler)(nil)
)
