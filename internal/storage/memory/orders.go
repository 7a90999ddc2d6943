package memory

import (
	"context"
	"sort"

	"github.com/warebase/server/internal/domain/orders"
)

var (
	_ orders.OrderRepository     = (*orderRepo)(nil)
	_ orders.OrderItemRepository = (*orderItemRepo)(nil)
)

type orderRepo struct {
	s *store
}

func (r *orderRepo) List(ctx context.Context, filters orders.Filters) ([]orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]orders.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		if filters.OrganizationID != nil && o.OrganizationID != *filters.OrganizationID {
			continue
		}
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		if !containsFold(o.OrderNumber, filters.Query) && !containsFold(o.CustomerName, filters.Query) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	return &o, nil
}

func (r *orderRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]orders.Order, len(ids))
	for _, id := range ids {
		if o, ok := r.s.orders[id]; ok {
			out[id] = o
		}
	}
	return out, nil
}

func (r *orderRepo) GetByNumber(ctx context.Context, organizationID int64, orderNumber string) (*orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.orders {
		if o.OrganizationID == organizationID && o.OrderNumber == orderNumber {
			return &o, nil
		}
	}
	return nil, orders.ErrNotFound
}

// CreateWithItems writes the order row and all of its lines under one hold of
// the write lock. A failed uniqueness check leaves nothing behind.
func (r *orderRepo) CreateWithItems(ctx context.Context, order orders.Order, items []orders.OrderItem) (*orders.Order, []orders.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.orders {
		if other.OrganizationID == order.OrganizationID && other.OrderNumber == order.OrderNumber {
			return nil, nil, orders.ErrOrderNumberTaken
		}
	}

	ts := now()
	order.ID = r.s.nextID("orders")
	order.CreatedAt = ts
	order.UpdatedAt = ts
	r.s.orders[order.ID] = order

	created := make([]orders.OrderItem, 0, len(items))
	for _, item := range items {
		item.ID = r.s.nextID("order_items")
		item.OrderID = order.ID
		item.CreatedAt = ts
		item.UpdatedAt = ts
		r.s.orderItems[item.ID] = item
		created = append(created, item)
	}

	return &order, created, nil
}

func (r *orderRepo) Update(ctx context.Context, order orders.Order) (*orders.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.orders[order.ID]
	if !ok {
		return nil, orders.ErrNotFound
	}
	order.CreatedAt = existing.CreatedAt
	order.UpdatedAt = now()
	r.s.orders[order.ID] = order
	return &order, nil
}

func (r *orderRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.orders[id]
	return ok, nil
}

type orderItemRepo struct {
	s *store
}

func (r *orderItemRepo) ListByOrder(ctx context.Context, orderID int64) ([]orders.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []orders.OrderItem
	for _, item := range r.s.orderItems {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *orderItemRepo) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]orders.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = struct{}{}
	}

	out := make(map[int64][]orders.OrderItem, len(orderIDs))
	for _, item := range r.s.orderItems {
		if _, ok := wanted[item.OrderID]; ok {
			out[item.OrderID] = append(out[item.OrderID], item)
		}
	}
	for _, items := range out {
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	}
	return out, nil
}

func (r *orderItemRepo) GetByID(ctx context.Context, id int64) (*orders.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.orderItems[id]
	if !ok {
		return nil, orders.ErrItemNotFound
	}
	return &item, nil
}

func (r *orderItemRepo) Update(ctx context.Context, item orders.OrderItem) (*orders.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.orderItems[item.ID]
	if !ok {
		return nil, orders.ErrItemNotFound
	}
	item.CreatedAt = existing.CreatedAt
	item.OrderID = existing.OrderID
	item.UpdatedAt = now()
	r.s.orderItems[item.ID] = item
	return &item, nil
}
