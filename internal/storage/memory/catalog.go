package memory

import (
	"context"
	"sort"

	"github.com/warebase/server/internal/domain/catalog"
)

var (
	_ catalog.CategoryRepository = (*categoryRepo)(nil)
	_ catalog.SupplierRepository = (*supplierRepo)(nil)
	_ catalog.ItemRepository     = (*itemRepo)(nil)
)

type categoryRepo struct {
	s *store
}

func (r *categoryRepo) List(ctx context.Context, filters catalog.CategoryFilters) ([]catalog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]catalog.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		if filters.OrganizationID != nil && c.OrganizationID != *filters.OrganizationID {
			continue
		}
		if !containsFold(c.Name, filters.Query) && !containsFold(c.Code, filters.Query) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*catalog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *categoryRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]catalog.Category, len(ids))
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (r *categoryRepo) Create(ctx context.Context, c catalog.Category) (*catalog.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.ID = r.s.nextID("categories")
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	r.s.categories[c.ID] = c
	return &c, nil
}

func (r *categoryRepo) Update(ctx context.Context, c catalog.Category) (*catalog.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[c.ID]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = now()
	r.s.categories[c.ID] = c
	return &c, nil
}

func (r *categoryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.categories[id]
	return ok, nil
}

type supplierRepo struct {
	s *store
}

func (r *supplierRepo) List(ctx context.Context, filters catalog.SupplierFilters) ([]catalog.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]catalog.Supplier, 0, len(r.s.suppliers))
	for _, sp := range r.s.suppliers {
		if filters.OrganizationID != nil && sp.OrganizationID != *filters.OrganizationID {
			continue
		}
		if !containsFold(sp.Name, filters.Query) && !containsFold(sp.Code, filters.Query) {
			continue
		}
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *supplierRepo) GetByID(ctx context.Context, id int64) (*catalog.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sp, ok := r.s.suppliers[id]
	if !ok {
		return nil, catalog.ErrSupplierNotFound
	}
	return &sp, nil
}

func (r *supplierRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]catalog.Supplier, len(ids))
	for _, id := range ids {
		if sp, ok := r.s.suppliers[id]; ok {
			out[id] = sp
		}
	}
	return out, nil
}

func (r *supplierRepo) Create(ctx context.Context, sp catalog.Supplier) (*catalog.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sp.ID = r.s.nextID("suppliers")
	sp.CreatedAt = now()
	sp.UpdatedAt = sp.CreatedAt
	r.s.suppliers[sp.ID] = sp
	return &sp, nil
}

func (r *supplierRepo) Update(ctx context.Context, sp catalog.Supplier) (*catalog.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.suppliers[sp.ID]
	if !ok {
		return nil, catalog.ErrSupplierNotFound
	}
	sp.CreatedAt = existing.CreatedAt
	sp.UpdatedAt = now()
	r.s.suppliers[sp.ID] = sp
	return &sp, nil
}

func (r *supplierRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.suppliers[id]
	return ok, nil
}

type itemRepo struct {
	s *store
}

func (r *itemRepo) List(ctx context.Context, filters catalog.ItemFilters) ([]catalog.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]catalog.Item, 0, len(r.s.items))
	for _, item := range r.s.items {
		if filters.OrganizationID != nil && item.OrganizationID != *filters.OrganizationID {
			continue
		}
		if filters.CategoryID != nil {
			if item.CategoryID == nil || *item.CategoryID != *filters.CategoryID {
				continue
			}
		}
		if filters.SupplierID != nil {
			if item.SupplierID == nil || *item.SupplierID != *filters.SupplierID {
				continue
			}
		}
		if !containsFold(item.SKU, filters.Query) &&
			!containsFold(item.Name, filters.Query) &&
			!containsFold(item.Barcode, filters.Query) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*catalog.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.items[id]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	return &item, nil
}

func (r *itemRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]catalog.Item, len(ids))
	for _, id := range ids {
		if item, ok := r.s.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (r *itemRepo) GetBySKU(ctx context.Context, organizationID int64, sku string) (*catalog.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, item := range r.s.items {
		if item.OrganizationID == organizationID && item.SKU == sku {
			return &item, nil
		}
	}
	return nil, catalog.ErrItemNotFound
}

func (r *itemRepo) Create(ctx context.Context, item catalog.Item) (*catalog.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.items {
		if other.OrganizationID == item.OrganizationID && other.SKU == item.SKU {
			return nil, catalog.ErrSKUTaken
		}
	}

	item.ID = r.s.nextID("items")
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt
	r.s.items[item.ID] = item
	return &item, nil
}

func (r *itemRepo) Update(ctx context.Context, item catalog.Item) (*catalog.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.items[item.ID]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	for _, other := range r.s.items {
		if other.ID != item.ID && other.OrganizationID == item.OrganizationID && other.SKU == item.SKU {
			return nil, catalog.ErrSKUTaken
		}
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = now()
	r.s.items[item.ID] = item
	return &item, nil
}

func (r *itemRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.items[id]
	return ok, nil
}
