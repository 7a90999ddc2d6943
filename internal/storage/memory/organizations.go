package memory

import (
	"context"
	"sort"

	"github.com/warebase/server/internal/domain/organizations"
)

var _ organizations.Repository = (*organizationRepo)(nil)

type organizationRepo struct {
	s *store
}

func (r *organizationRepo) List(ctx context.Context, filters organizations.Filters) ([]organizations.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]organizations.Organization, 0, len(r.s.organizations))
	for _, org := range r.s.organizations {
		if filters.ParentID != nil {
			if org.ParentID == nil || *org.ParentID != *filters.ParentID {
				continue
			}
		}
		if filters.Active != nil && org.Active != *filters.Active {
			continue
		}
		if !containsFold(org.Name, filters.Query) && !containsFold(org.Description, filters.Query) {
			continue
		}
		out = append(out, org)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *organizationRepo) GetByID(ctx context.Context, id int64) (*organizations.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	org, ok := r.s.organizations[id]
	if !ok {
		return nil, organizations.ErrNotFound
	}
	return &org, nil
}

func (r *organizationRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]organizations.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]organizations.Organization, len(ids))
	for _, id := range ids {
		if org, ok := r.s.organizations[id]; ok {
			out[id] = org
		}
	}
	return out, nil
}

func (r *organizationRepo) Create(ctx context.Context, org organizations.Organization) (*organizations.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	org.ID = r.s.nextID("organizations")
	org.CreatedAt = now()
	org.UpdatedAt = org.CreatedAt
	r.s.organizations[org.ID] = org
	return &org, nil
}

func (r *organizationRepo) Update(ctx context.Context, org organizations.Organization) (*organizations.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.organizations[org.ID]
	if !ok {
		return nil, organizations.ErrNotFound
	}
	org.CreatedAt = existing.CreatedAt
	org.UpdatedAt = now()
	r.s.organizations[org.ID] = org
	return &org, nil
}

func (r *organizationRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.organizations[id]
	return ok, nil
}
