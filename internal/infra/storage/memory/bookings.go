package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "gowaay/internal/domain/booking"
	"gowaay/internal/domain/shared/events"
)

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.ID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[b.ID]; ok && existing.Version != b.Version {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) List(ctx context.Context, params domainbooking.ListParams) ([]*domainbooking.Booking, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if params.UserID != "" && b.UserID != params.UserID {
			continue
		}
		if params.Status != "" && b.Status != params.Status {
			continue
		}
		if params.PaymentStatus != "" && b.PaymentStatus != params.PaymentStatus {
			continue
		}
		matches = append(matches, b)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	out := page(matches, params.Limit, params.Offset)
	for i, b := range out {
		out[i] = cloneBooking(b)
	}
	return out, len(matches), nil
}

func (r *BookingRepository) Count(ctx context.Context, status domainbooking.Status) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, b := range r.items {
		if status == "" || b.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *BookingRepository) Revenue(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total int64
	for _, b := range r.items {
		if b.IsPayable() {
			total += b.Amount.Amount
		}
	}
	return total, nil
}

func (r *BookingRepository) TotalsByUser(ctx context.Context, userIDs []string) (map[string]domainbooking.UserTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[string]domainbooking.UserTotals, len(userIDs))
	for _, b := range r.items {
		if _, ok := wanted[b.UserID]; !ok {
			continue
		}
		totals := out[b.UserID]
		totals.Bookings++
		if b.IsPayable() {
			totals.TotalSpent += b.Amount.Amount
		}
		out[b.UserID] = totals
	}
	return out, nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	c := *b
	c.Recorder = events.Recorder{}
	if b.ManualPayment != nil {
		mp := *b.ManualPayment
		c.ManualPayment = &mp
	}
	return &c
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
