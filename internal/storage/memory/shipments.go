package memory

import (
	"context"
	"sort"

	"github.com/warebase/server/internal/domain/shipments"
)

var _ shipments.Repository = (*shipmentRepo)(nil)

type shipmentRepo struct {
	s *store
}

func (r *shipmentRepo) List(ctx context.Context, filters shipments.Filters) ([]shipments.Shipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]shipments.Shipment, 0, len(r.s.shipments))
	for _, sh := range r.s.shipments {
		if filters.OrderID != nil && sh.OrderID != *filters.OrderID {
			continue
		}
		if filters.Status != "" && sh.Status != filters.Status {
			continue
		}
		if filters.Carrier != "" && !containsFold(sh.Carrier, filters.Carrier) {
			continue
		}
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *shipmentRepo) GetByID(ctx context.Context, id int64) (*shipments.Shipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sh, ok := r.s.shipments[id]
	if !ok {
		return nil, shipments.ErrNotFound
	}
	return &sh, nil
}

func (r *shipmentRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]shipments.Shipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]shipments.Shipment, len(ids))
	for _, id := range ids {
		if sh, ok := r.s.shipments[id]; ok {
			out[id] = sh
		}
	}
	return out, nil
}

func (r *shipmentRepo) Create(ctx context.Context, sh shipments.Shipment) (*shipments.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sh.ID = r.s.nextID("shipments")
	sh.CreatedAt = now()
	sh.UpdatedAt = sh.CreatedAt
	r.s.shipments[sh.ID] = sh
	return &sh, nil
}

func (r *shipmentRepo) Update(ctx context.Context, sh shipments.Shipment) (*shipments.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.shipments[sh.ID]
	if !ok {
		return nil, shipments.ErrNotFound
	}
	sh.CreatedAt = existing.CreatedAt
	sh.UpdatedAt = now()
	r.s.shipments[sh.ID] = sh
	return &sh, nil
}

func (r *shipmentRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.shipments[id]
	return ok, nil
}
