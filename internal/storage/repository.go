// Package storage defines the persistence boundary. The memory and postgres
// packages provide interchangeable engines behind the same Repository
// interface; which one serves a process is a config decision, not a code one.
package storage

import (
	"context"

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
)

// Repository groups data access by domain.
type Repository interface {
	Organizations() organizations.Repository
	Roles() roles.Repository
	Users() users.Repository

	Warehouses() warehouses.WarehouseRepository
	Zones() warehouses.ZoneRepository
	BinTypes() warehouses.BinTypeRepository
	Bins() warehouses.BinRepository

	Categories() catalog.CategoryRepository
	Suppliers() catalog.SupplierRepository
	Items() catalog.ItemRepository

	Inventory() inventory.LevelRepository
	InventoryTransactions() inventory.TransactionRepository

	Orders() orders.OrderRepository
	OrderItems() orders.OrderItemRepository

	Shipments() shipments.Repository

	Activity() activity.Repository
	Sessions() auth.SessionStore

	// WithTx runs fn against a transactional view of the repository. The
	// postgres engine opens a real transaction; the memory engine serializes
	// its compound writes internally and runs fn against the same store.
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	Ping(ctx context.Context) error
	Close()
}
