package memory

import (
	"context"
	"sort"

	"github.com/warebase/server/internal/domain/users"
)

var _ users.Repository = (*userRepo)(nil)

type userRepo struct {
	s *store
}

func (r *userRepo) List(ctx context.Context, filters users.Filters) ([]users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]users.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		if filters.OrganizationID != nil {
			if user.OrganizationID == nil || *user.OrganizationID != *filters.OrganizationID {
				continue
			}
		}
		if filters.RoleID != nil {
			if user.RoleID == nil || *user.RoleID != *filters.RoleID {
				continue
			}
		}
		if filters.Active != nil && user.Active != *filters.Active {
			continue
		}
		if !containsFold(user.Username, filters.Query) &&
			!containsFold(user.Email, filters.Query) &&
			!containsFold(user.FullName, filters.Query) {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]users.User, len(ids))
	for _, id := range ids {
		if user, ok := r.s.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *userRepo) Create(ctx context.Context, user users.User) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Same guarantee the postgres engine gets from its unique index.
	for _, other := range r.s.users {
		if other.Username == user.Username {
			return nil, users.ErrUsernameTaken
		}
	}

	user.ID = r.s.nextID("users")
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = user
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user users.User) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return nil, users.ErrNotFound
	}
	for _, other := range r.s.users {
		if other.ID != user.ID && other.Username == user.Username {
			return nil, users.ErrUsernameTaken
		}
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = now()
	r.s.users[user.ID] = user
	return &user, nil
}

func (r *userRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.users[id]
	return ok, nil
}
