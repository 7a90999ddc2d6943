package memory

import (
	"context"
	"sort"

	"github.com/warebase/server/internal/domain/roles"
)

var _ roles.Repository = (*roleRepo)(nil)

type roleRepo struct {
	s *store
}

func (r *roleRepo) List(ctx context.Context, filters roles.Filters) ([]roles.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]roles.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		if filters.Scope != "" && role.Scope != filters.Scope {
			continue
		}
		if !containsFold(role.Name, filters.Query) && !containsFold(role.Description, filters.Query) {
			continue
		}
		role.Permissions = clonePermissions(role.Permissions)
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *roleRepo) GetByID(ctx context.Context, id int64) (*roles.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	role, ok := r.s.roles[id]
	if !ok {
		return nil, roles.ErrNotFound
	}
	role.Permissions = clonePermissions(role.Permissions)
	return &role, nil
}

func (r *roleRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]roles.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]roles.Role, len(ids))
	for _, id := range ids {
		if role, ok := r.s.roles[id]; ok {
			role.Permissions = clonePermissions(role.Permissions)
			out[id] = role
		}
	}
	return out, nil
}

func (r *roleRepo) Create(ctx context.Context, role roles.Role) (*roles.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	role.ID = r.s.nextID("roles")
	role.CreatedAt = now()
	role.UpdatedAt = role.CreatedAt
	role.Permissions = clonePermissions(role.Permissions)
	r.s.roles[role.ID] = role

	out := role
	out.Permissions = clonePermissions(role.Permissions)
	return &out, nil
}

func (r *roleRepo) Update(ctx context.Context, role roles.Role) (*roles.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.roles[role.ID]
	if !ok {
		return nil, roles.ErrNotFound
	}
	role.CreatedAt = existing.CreatedAt
	role.UpdatedAt = now()
	role.Permissions = clonePermissions(role.Permissions)
	r.s.roles[role.ID] = role

	out := role
	out.Permissions = clonePermissions(role.Permissions)
	return &out, nil
}

func (r *roleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.roles[id]
	return ok, nil
}

// clonePermissions keeps callers from mutating the stored slice through a
// returned role.
func clonePermissions(perms []string) []string {
	if perms == nil {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
