package support

import (
	"context"
	"errors"

	domainhosts "gowaay/internal/domain/hosts"
	domainrooms "gowaay/internal/domain/rooms"
	domainuser "gowaay/internal/domain/user"
)

// HostsByID resolves host profiles for list rendering. Missing hosts are skipped.
func HostsByID(ctx context.Context, repo domainhosts.Repository, ids []domainhosts.ID) (map[domainhosts.ID]*domainhosts.Profile, error) {
	out := make(map[domainhosts.ID]*domainhosts.Profile, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := out[id]; ok {
			continue
		}
		profile, err := repo.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainhosts.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out[id] = profile
	}
	return out, nil
}

func RoomsByID(ctx context.Context, repo domainrooms.Repository, ids []domainrooms.ID) (map[domainrooms.ID]*domainrooms.Room, error) {
	out := make(map[domainrooms.ID]*domainrooms.Room, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok || id == "" {
			continue
		}
		room, err := repo.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainrooms.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out[id] = room
	}
	return out, nil
}

func UsersByID(ctx context.Context, repo domainuser.Repository, ids []string) (map[string]*domainuser.User, error) {
	out := make(map[string]*domainuser.User, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok || id == "" {
			continue
		}
		u, err := repo.ByID(ctx, domainuser.ID(id))
		if err != nil {
			if errors.Is(err, domainuser.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out[id] = u
	}
	return out, nil
}
