// Package postgres is the durable storage engine. Repositories issue
// hand-written SQL through pgx; a Repository carrying a non-nil tx routes
// every query through that transaction instead of the pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/activity"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/inventory"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/domain/organizations"
	"github.com/warebase/server/internal/domain/roles"
	"github.com/warebase/server/internal/domain/shipments"
	"github.com/warebase/server/internal/domain/users"
	"github.com/warebase/server/internal/domain/warehouses"
	"github.com/warebase/server/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Organizations() organizations.Repository {
	return &OrganizationRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Roles() roles.Repository {
	return &RoleRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Warehouses() warehouses.WarehouseRepository {
	return &WarehouseRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Zones() warehouses.ZoneRepository {
	return &ZoneRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) BinTypes() warehouses.BinTypeRepository {
	return &BinTypeRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Bins() warehouses.BinRepository {
	return &BinRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Categories() catalog.CategoryRepository {
	return &CategoryRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Suppliers() catalog.SupplierRepository {
	return &SupplierRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Items() catalog.ItemRepository {
	return &ItemRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Inventory() inventory.LevelRepository {
	return &LevelRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) InventoryTransactions() inventory.TransactionRepository {
	return &TransactionRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Orders() orders.OrderRepository {
	return &OrderRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) OrderItems() orders.OrderItemRepository {
	return &OrderItemRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Shipments() shipments.Repository {
	return &ShipmentRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Activity() activity.Repository {
	return &ActivityRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Sessions() auth.SessionStore {
	return &SessionRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Repository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) Close() {
	r.pool.Close()
}

// queryer is satisfied by both pgxpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
