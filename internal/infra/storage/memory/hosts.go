package memory

import (
	"context"
	"sort"
	"sync"

	domainhosts "gowaay/internal/domain/hosts"
	"gowaay/internal/domain/shared/events"
)

type HostRepository struct {
	mu    sync.RWMutex
	items map[domainhosts.ID]*domainhosts.Profile
}

func NewHostRepository() *HostRepository {
	return &HostRepository{items: make(map[domainhosts.ID]*domainhosts.Profile)}
}

func (r *HostRepository) ByID(ctx context.Context, id domainhosts.ID) (*domainhosts.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.items[id]
	if !ok {
		return nil, domainhosts.ErrNotFound
	}
	return cloneHost(profile), nil
}

func (r *HostRepository) ByUser(ctx context.Context, userID string) (*domainhosts.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, profile := range r.items {
		if profile.UserID == userID && !profile.IsSystemHost {
			return cloneHost(profile), nil
		}
	}
	return nil, domainhosts.ErrNotFound
}

func (r *HostRepository) SystemHost(ctx context.Context) (*domainhosts.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, profile := range r.items {
		if profile.IsSystemHost {
			return cloneHost(profile), nil
		}
	}
	return nil, domainhosts.ErrNotFound
}

func (r *HostRepository) Save(ctx context.Context, profile *domainhosts.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[profile.ID]; ok && existing.Version != profile.Version {
		return domainhosts.ErrConcurrentUpdate
	}
	profile.Version++
	r.items[profile.ID] = cloneHost(profile)
	return nil
}

func (r *HostRepository) List(ctx context.Context, params domainhosts.ListParams) ([]*domainhosts.Profile, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainhosts.Profile, 0, len(r.items))
	for _, profile := range r.items {
		if params.Status != "" && profile.Status != params.Status {
			continue
		}
		matches = append(matches, profile)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	out := page(matches, params.Limit, params.Offset)
	for i, profile := range out {
		out[i] = cloneHost(profile)
	}
	return out, len(matches), nil
}

func (r *HostRepository) Count(ctx context.Context, status domainhosts.Status) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, profile := range r.items {
		if status == "" || profile.Status == status {
			n++
		}
	}
	return n, nil
}

func cloneHost(p *domainhosts.Profile) *domainhosts.Profile {
	c := *p
	c.Recorder = events.Recorder{}
	return &c
}

var _ domainhosts.Repository = (*HostRepository)(nil)
