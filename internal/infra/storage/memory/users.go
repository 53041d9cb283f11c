package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	domainuser "gowaay/internal/domain/user"
)

// UserRepository keeps accounts in process with a unique email index.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[domainuser.ID]domainuser.User
	emails map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  map[domainuser.ID]domainuser.User{},
		emails: map[string]domainuser.ID{},
	}
}

func (r *UserRepository) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *UserRepository) ByEmail(_ context.Context, email string) (*domainuser.User, error) {
	key, err := domainuser.NormalizeEmail(email)
	if err != nil {
		return nil, domainuser.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(r.emails[key])
}

func (r *UserRepository) get(id domainuser.ID) (*domainuser.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return userCopy(u), nil
}

func (r *UserRepository) Save(_ context.Context, u *domainuser.User) error {
	if u == nil || strings.TrimSpace(string(u.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	key := strings.ToLower(strings.TrimSpace(u.Email))
	if key == "" {
		return domainuser.ErrEmailRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, taken := r.emails[key]; taken && owner != u.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if prev, ok := r.users[u.ID]; ok {
		delete(r.emails, strings.ToLower(prev.Email))
	}
	stored := *userCopy(*u)
	r.users[u.ID] = stored
	r.emails[key] = u.ID
	return nil
}

// List matches Query against name and email, case-insensitively.
func (r *UserRepository) List(_ context.Context, params domainuser.ListParams) ([]*domainuser.User, int, error) {
	needle := strings.ToLower(strings.TrimSpace(params.Query))
	r.mu.RLock()
	matches := make([]*domainuser.User, 0, len(r.users))
	for _, u := range r.users {
		haystack := strings.ToLower(u.Name + " " + u.Email)
		if needle == "" || strings.Contains(haystack, needle) {
			matches = append(matches, userCopy(u))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return page(matches, params.Limit, params.Offset), len(matches), nil
}

func userCopy(u domainuser.User) *domainuser.User {
	u.Roles = slices.Clone(u.Roles)
	return &u
}

var _ domainuser.Repository = (*UserRepository)(nil)
