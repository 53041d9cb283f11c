package memory

import (
	"context"
	"sort"
	"sync"

	domainrooms "gowaay/internal/domain/rooms"
	"gowaay/internal/domain/shared/events"
)

// RoomRepository stores rooms in memory with the same version check as the Mongo store.
type RoomRepository struct {
	mu    sync.RWMutex
	items map[domainrooms.ID]*domainrooms.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{items: make(map[domainrooms.ID]*domainrooms.Room)}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.ID) (*domainrooms.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.items[id]
	if !ok {
		return nil, domainrooms.ErrNotFound
	}
	return cloneRoom(room), nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[room.ID]; ok && existing.Version != room.Version {
		return domainrooms.ErrConcurrentUpdate
	}
	room.Version++
	r.items[room.ID] = cloneRoom(room)
	return nil
}

func (r *RoomRepository) List(ctx context.Context, params domainrooms.ListParams) ([]*domainrooms.Room, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainrooms.Room, 0, len(r.items))
	for _, room := range r.items {
		if params.Status != "" && room.Status != params.Status {
			continue
		}
		if params.HostID != "" && room.HostID != params.HostID {
			continue
		}
		matches = append(matches, room)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	out := page(matches, params.Limit, params.Offset)
	for i, room := range out {
		out[i] = cloneRoom(room)
	}
	return out, len(matches), nil
}

func (r *RoomRepository) Count(ctx context.Context, status domainrooms.Status) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, room := range r.items {
		if status == "" || room.Status == status {
			n++
		}
	}
	return n, nil
}

func cloneRoom(room *domainrooms.Room) *domainrooms.Room {
	c := *room
	c.Recorder = events.Recorder{}
	c.Amenities = append([]string(nil), room.Amenities...)
	c.Images = append([]string(nil), room.Images...)
	c.UnavailableDates = append(c.UnavailableDates[:0:0], room.UnavailableDates...)
	return &c
}

var _ domainrooms.Repository = (*RoomRepository)(nil)
