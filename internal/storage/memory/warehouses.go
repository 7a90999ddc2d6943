package memory

import (
	"context"
	"sort"

	"github.com/warebase/server/internal/domain/warehouses"
)

var (
	_ warehouses.WarehouseRepository = (*warehouseRepo)(nil)
	_ warehouses.ZoneRepository      = (*zoneRepo)(nil)
	_ warehouses.BinTypeRepository   = (*binTypeRepo)(nil)
	_ warehouses.BinRepository       = (*binRepo)(nil)
)

type warehouseRepo struct {
	s *store
}

func (r *warehouseRepo) List(ctx context.Context, filters warehouses.WarehouseFilters) ([]warehouses.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]warehouses.Warehouse, 0, len(r.s.warehouses))
	for _, w := range r.s.warehouses {
		if filters.OrganizationID != nil && w.OrganizationID != *filters.OrganizationID {
			continue
		}
		if !containsFold(w.Name, filters.Query) && !containsFold(w.Code, filters.Query) {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *warehouseRepo) GetByID(ctx context.Context, id int64) (*warehouses.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, warehouses.ErrWarehouseNotFound
	}
	return &w, nil
}

func (r *warehouseRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]warehouses.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]warehouses.Warehouse, len(ids))
	for _, id := range ids {
		if w, ok := r.s.warehouses[id]; ok {
			out[id] = w
		}
	}
	return out, nil
}

func (r *warehouseRepo) Create(ctx context.Context, w warehouses.Warehouse) (*warehouses.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w.ID = r.s.nextID("warehouses")
	w.CreatedAt = now()
	w.UpdatedAt = w.CreatedAt
	r.s.warehouses[w.ID] = w
	return &w, nil
}

func (r *warehouseRepo) Update(ctx context.Context, w warehouses.Warehouse) (*warehouses.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.warehouses[w.ID]
	if !ok {
		return nil, warehouses.ErrWarehouseNotFound
	}
	w.CreatedAt = existing.CreatedAt
	w.UpdatedAt = now()
	r.s.warehouses[w.ID] = w
	return &w, nil
}

func (r *warehouseRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.warehouses[id]
	return ok, nil
}

type zoneRepo struct {
	s *store
}

func (r *zoneRepo) List(ctx context.Context, filters warehouses.ZoneFilters) ([]warehouses.Zone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]warehouses.Zone, 0, len(r.s.zones))
	for _, z := range r.s.zones {
		if filters.WarehouseID != nil && z.WarehouseID != *filters.WarehouseID {
			continue
		}
		if !containsFold(z.Name, filters.Query) && !containsFold(z.Code, filters.Query) {
			continue
		}
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *zoneRepo) GetByID(ctx context.Context, id int64) (*warehouses.Zone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	z, ok := r.s.zones[id]
	if !ok {
		return nil, warehouses.ErrZoneNotFound
	}
	return &z, nil
}

func (r *zoneRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]warehouses.Zone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]warehouses.Zone, len(ids))
	for _, id := range ids {
		if z, ok := r.s.zones[id]; ok {
			out[id] = z
		}
	}
	return out, nil
}

func (r *zoneRepo) Create(ctx context.Context, z warehouses.Zone) (*warehouses.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	z.ID = r.s.nextID("zones")
	z.CreatedAt = now()
	z.UpdatedAt = z.CreatedAt
	r.s.zones[z.ID] = z
	return &z, nil
}

func (r *zoneRepo) Update(ctx context.Context, z warehouses.Zone) (*warehouses.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.zones[z.ID]
	if !ok {
		return nil, warehouses.ErrZoneNotFound
	}
	z.CreatedAt = existing.CreatedAt
	z.UpdatedAt = now()
	r.s.zones[z.ID] = z
	return &z, nil
}

func (r *zoneRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.zones[id]
	return ok, nil
}

type binTypeRepo struct {
	s *store
}

func (r *binTypeRepo) List(ctx context.Context, filters warehouses.BinTypeFilters) ([]warehouses.BinType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]warehouses.BinType, 0, len(r.s.binTypes))
	for _, bt := range r.s.binTypes {
		if filters.OrganizationID != nil && bt.OrganizationID != *filters.OrganizationID {
			continue
		}
		if !containsFold(bt.Name, filters.Query) {
			continue
		}
		out = append(out, bt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *binTypeRepo) GetByID(ctx context.Context, id int64) (*warehouses.BinType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bt, ok := r.s.binTypes[id]
	if !ok {
		return nil, warehouses.ErrBinTypeNotFound
	}
	return &bt, nil
}

func (r *binTypeRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]warehouses.BinType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]warehouses.BinType, len(ids))
	for _, id := range ids {
		if bt, ok := r.s.binTypes[id]; ok {
			out[id] = bt
		}
	}
	return out, nil
}

func (r *binTypeRepo) Create(ctx context.Context, bt warehouses.BinType) (*warehouses.BinType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	bt.ID = r.s.nextID("bin_types")
	bt.CreatedAt = now()
	bt.UpdatedAt = bt.CreatedAt
	r.s.binTypes[bt.ID] = bt
	return &bt, nil
}

func (r *binTypeRepo) Update(ctx context.Context, bt warehouses.BinType) (*warehouses.BinType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.binTypes[bt.ID]
	if !ok {
		return nil, warehouses.ErrBinTypeNotFound
	}
	bt.CreatedAt = existing.CreatedAt
	bt.UpdatedAt = now()
	r.s.binTypes[bt.ID] = bt
	return &bt, nil
}

func (r *binTypeRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.binTypes[id]
	return ok, nil
}

type binRepo struct {
	s *store
}

func (r *binRepo) List(ctx context.Context, filters warehouses.BinFilters) ([]warehouses.Bin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]warehouses.Bin, 0, len(r.s.bins))
	for _, b := range r.s.bins {
		if filters.ZoneID != nil && b.ZoneID != *filters.ZoneID {
			continue
		}
		if filters.BinTypeID != nil {
			if b.BinTypeID == nil || *b.BinTypeID != *filters.BinTypeID {
				continue
			}
		}
		if filters.Active != nil && b.Active != *filters.Active {
			continue
		}
		if !containsFold(b.Name, filters.Query) && !containsFold(b.Code, filters.Query) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *binRepo) GetByID(ctx context.Context, id int64) (*warehouses.Bin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bins[id]
	if !ok {
		return nil, warehouses.ErrBinNotFound
	}
	return &b, nil
}

func (r *binRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]warehouses.Bin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]warehouses.Bin, len(ids))
	for _, id := range ids {
		if b, ok := r.s.bins[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func (r *binRepo) Create(ctx context.Context, b warehouses.Bin) (*warehouses.Bin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b.ID = r.s.nextID("bins")
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt
	r.s.bins[b.ID] = b
	return &b, nil
}

func (r *binRepo) Update(ctx context.Context, b warehouses.Bin) (*warehouses.Bin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.bins[b.ID]
	if !ok {
		return nil, warehouses.ErrBinNotFound
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = now()
	r.s.bins[b.ID] = b
	return &b, nil
}

func (r *binRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.bins[id]
	return ok, nil
}
