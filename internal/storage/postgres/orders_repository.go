package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/domain/orders"
)

var (
	_ orders.OrderRepository     = (*OrderRepository)(nil)
	_ orders.OrderItemRepository = (*OrderItemRepository)(nil)
)

type OrderRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *OrderRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const orderColumns = `id, order_number, customer_name, customer_email, shipping_address, status, notes, organization_id, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*orders.Order, error) {
	var o orders.Order
	if err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.ShippingAddress,
		&o.Status,
		&o.Notes,
		&o.OrganizationID,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context, filters orders.Filters) ([]orders.Order, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+orderColumns+`
  FROM orders
 WHERE ($1::bigint IS NULL OR organization_id = $1)
   AND ($2::text IS NULL OR status = $2)
   AND ($3::text IS NULL OR order_number ILIKE '%' || $3 || '%' OR customer_name ILIKE '%' || $3 || '%')
 ORDER BY id
`, filters.OrganizationID, nilIfEmpty(filters.Status), nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*orders.Order, error) {
	o, err := scanOrder(r.queryer().QueryRow(ctx, `
SELECT `+orderColumns+` FROM orders WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orders.ErrNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

func (r *OrderRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]orders.Order, error) {
	if len(ids) == 0 {
		return map[int64]orders.Order{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+orderColumns+` FROM orders WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get orders by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]orders.Order, len(ids))
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out[o.ID] = *o
	}
	return out, rows.Err()
}

func (r *OrderRepository) GetByNumber(ctx context.Context, organizationID int64, orderNumber string) (*orders.Order, error) {
	o, err := scanOrder(r.queryer().QueryRow(ctx, `
SELECT `+orderColumns+` FROM orders WHERE organization_id = $1 AND order_number = $2
`, organizationID, orderNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orders.ErrNotFound
		}
		return nil, fmt.Errorf("get order %q: %w", orderNumber, err)
	}
	return o, nil
}

// CreateWithItems inserts the order row and all of its lines in one
// transaction, so a failure part-way leaves no orphaned order behind.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order orders.Order, items []orders.OrderItem) (*orders.Order, []orders.OrderItem, error) {
	if r.tx != nil {
		return r.createWithItems(ctx, r.tx, order, items)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}

	created, createdItems, err := r.createWithItems(ctx, tx, order, items)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, createdItems, nil
}

func (r *OrderRepository) createWithItems(ctx context.Context, tx pgx.Tx, order orders.Order, items []orders.OrderItem) (*orders.Order, []orders.OrderItem, error) {
	created, err := scanOrder(tx.QueryRow(ctx, `
INSERT INTO orders (order_number, customer_name, customer_email, shipping_address, status, notes, organization_id, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+orderColumns+`
`, order.OrderNumber, order.CustomerName, order.CustomerEmail, order.ShippingAddress,
		order.Status, order.Notes, order.OrganizationID, order.CreatedBy))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, orders.ErrOrderNumberTaken
		}
		return nil, nil, fmt.Errorf("create order: %w", err)
	}

	createdItems := make([]orders.OrderItem, 0, len(items))
	for _, item := range items {
		line, err := scanOrderItem(tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, item_id, quantity, allocated, picked, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+orderItemColumns+`
`, created.ID, item.ItemID, item.Quantity, item.Allocated, item.Picked, item.Status))
		if err != nil {
			return nil, nil, fmt.Errorf("create order item for item %d: %w", item.ItemID, err)
		}
		createdItems = append(createdItems, *line)
	}

	return created, createdItems, nil
}

func (r *OrderRepository) Update(ctx context.Context, order orders.Order) (*orders.Order, error) {
	updated, err := scanOrder(r.queryer().QueryRow(ctx, `
UPDATE orders
   SET customer_name = $2, customer_email = $3, shipping_address = $4, status = $5,
       notes = $6, updated_at = now()
 WHERE id = $1
RETURNING `+orderColumns+`
`, order.ID, order.CustomerName, order.CustomerEmail, order.ShippingAddress, order.Status, order.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orders.ErrNotFound
		}
		return nil, fmt.Errorf("update order %d: %w", order.ID, err)
	}
	return updated, nil
}

func (r *OrderRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("order exists %d: %w", id, err)
	}
	return exists, nil
}

type OrderItemRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *OrderItemRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const orderItemColumns = `id, order_id, item_id, quantity, allocated, picked, status, created_at, updated_at`

func scanOrderItem(row pgx.Row) (*orders.OrderItem, error) {
	var item orders.OrderItem
	if err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ItemID,
		&item.Quantity,
		&item.Allocated,
		&item.Picked,
		&item.Status,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *OrderItemRepository) ListByOrder(ctx context.Context, orderID int64) ([]orders.OrderItem, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY id
`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var out []orders.OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *OrderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]orders.OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[int64][]orders.OrderItem{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id
`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items by orders: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]orders.OrderItem, len(orderIDs))
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[item.OrderID] = append(out[item.OrderID], *item)
	}
	return out, rows.Err()
}

func (r *OrderItemRepository) GetByID(ctx context.Context, id int64) (*orders.OrderItem, error) {
	item, err := scanOrderItem(r.queryer().QueryRow(ctx, `
SELECT `+orderItemColumns+` FROM order_items WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orders.ErrItemNotFound
		}
		return nil, fmt.Errorf("get order item %d: %w", id, err)
	}
	return item, nil
}

func (r *OrderItemRepository) Update(ctx context.Context, item orders.OrderItem) (*orders.OrderItem, error) {
	updated, err := scanOrderItem(r.queryer().QueryRow(ctx, `
UPDATE order_items
   SET quantity = $2, allocated = $3, picked = $4, status = $5, updated_at = now()
 WHERE id = $1
RETURNING `+orderItemColumns+`
`, item.ID, item.Quantity, item.Allocated, item.Picked, item.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orders.ErrItemNotFound
		}
		return nil, fmt.Errorf("update order item %d: %w", item.ID, err)
	}
	return updated, nil
}
