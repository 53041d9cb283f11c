package admin

import (
	"context"

	"gowaay/internal/app/dto"
	"gowaay/internal/app/handlers/support"
	"gowaay/internal/app/queries"
	"gowaay/internal/app/retry"
	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	domainhosts "gowaay/internal/domain/hosts"
	domainrooms "gowaay/internal/domain/rooms"
)

const statsKey = "admin.stats"

type StatsQuery struct{}

func (StatsQuery) Key() string { return statsKey }

func (StatsQuery) RequiredRole() string { return roleAdmin }

type StatsHandler struct {
	UoWFactory uow.UoWFactory
	Retry      retry.Policy
}

// Handle aggregates the dashboard counters. Revenue counts confirmed and paid bookings only.
func (h *StatsHandler) Handle(ctx context.Context, _ StatsQuery) (*dto.AdminStats, error) {
	policy := h.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.Default
	}
	return retry.Value(ctx, policy, func(ctx context.Context) (*dto.AdminStats, error) {
		return h.collect(ctx)
	})
}

func (h *StatsHandler) collect(ctx context.Context) (*dto.AdminStats, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	var stats dto.AdminStats
	bookings := unit.Bookings()
	if stats.TotalBookings, err = bookings.Count(execCtx, ""); err != nil {
		return nil, err
	}
	if stats.ConfirmedBookings, err = bookings.Count(execCtx, domainbooking.StatusConfirmed); err != nil {
		return nil, err
	}
	if stats.CancelledBookings, err = bookings.Count(execCtx, domainbooking.StatusCancelled); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = bookings.Revenue(execCtx); err != nil {
		return nil, err
	}
	if stats.TotalHosts, err = unit.Hosts().Count(execCtx, ""); err != nil {
		return nil, err
	}
	if stats.ActiveHosts, err = unit.Hosts().Count(execCtx, domainhosts.StatusApproved); err != nil {
		return nil, err
	}
	if stats.TotalRooms, err = unit.Rooms().Count(execCtx, ""); err != nil {
		return nil, err
	}
	if stats.ActiveRooms, err = unit.Rooms().Count(execCtx, domainrooms.StatusApproved); err != nil {
		return nil, err
	}
	return &stats, nil
}

var _ queries.Handler[StatsQuery, *dto.AdminStats] = (*StatsHandler)(nil)
