// Package memory is an in-process storage engine. It backs development,
// tests, and single-node deployments that do not want to run Postgres; the
// data lives only as long as the process does.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

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

// store holds every table behind one lock. Compound writes (inventory Apply,
// order CreateWithItems) hold the write lock for their full duration, which
// is what gives them the same all-or-nothing behavior a database transaction
// would.
type store struct {
	mu  sync.RWMutex
	ids map[string]int64

	organizations map[int64]organizations.Organization
	roles         map[int64]roles.Role
	users         map[int64]users.User
	warehouses    map[int64]warehouses.Warehouse
	zones         map[int64]warehouses.Zone
	binTypes      map[int64]warehouses.BinType
	bins          map[int64]warehouses.Bin
	categories    map[int64]catalog.Category
	suppliers     map[int64]catalog.Supplier
	items         map[int64]catalog.Item
	levels        map[int64]inventory.Level
	levelByPair   map[[2]int64]int64
	transactions  map[int64]inventory.Transaction
	orders        map[int64]orders.Order
	orderItems    map[int64]orders.OrderItem
	shipments     map[int64]shipments.Shipment
	activity      map[int64]activity.Log
	sessions      map[string]auth.Session
}

// nextID hands out monotonically increasing ids per entity kind. Callers must
// hold the write lock.
func (s *store) nextID(kind string) int64 {
	s.ids[kind]++
	return s.ids[kind]
}

// Repository implements storage.Repository on top of an in-process store.
type Repository struct {
	s *store
}

func NewRepository() *Repository {
	return &Repository{s: &store{
		ids:           make(map[string]int64),
		organizations: make(map[int64]organizations.Organization),
		roles:         make(map[int64]roles.Role),
		users:         make(map[int64]users.User),
		warehouses:    make(map[int64]warehouses.Warehouse),
		zones:         make(map[int64]warehouses.Zone),
		binTypes:      make(map[int64]warehouses.BinType),
		bins:          make(map[int64]warehouses.Bin),
		categories:    make(map[int64]catalog.Category),
		suppliers:     make(map[int64]catalog.Supplier),
		items:         make(map[int64]catalog.Item),
		levels:        make(map[int64]inventory.Level),
		levelByPair:   make(map[[2]int64]int64),
		transactions:  make(map[int64]inventory.Transaction),
		orders:        make(map[int64]orders.Order),
		orderItems:    make(map[int64]orders.OrderItem),
		shipments:     make(map[int64]shipments.Shipment),
		activity:      make(map[int64]activity.Log),
		sessions:      make(map[string]auth.Session),
	}}
}

func (r *Repository) Organizations() organizations.Repository {
	return &organizationRepo{s: r.s}
}

func (r *Repository) Roles() roles.Repository {
	return &roleRepo{s: r.s}
}

func (r *Repository) Users() users.Repository {
	return &userRepo{s: r.s}
}

func (r *Repository) Warehouses() warehouses.WarehouseRepository {
	return &warehouseRepo{s: r.s}
}

func (r *Repository) Zones() warehouses.ZoneRepository {
	return &zoneRepo{s: r.s}
}

func (r *Repository) BinTypes() warehouses.BinTypeRepository {
	return &binTypeRepo{s: r.s}
}

func (r *Repository) Bins() warehouses.BinRepository {
	return &binRepo{s: r.s}
}

func (r *Repository) Categories() catalog.CategoryRepository {
	return &categoryRepo{s: r.s}
}

func (r *Repository) Suppliers() catalog.SupplierRepository {
	return &supplierRepo{s: r.s}
}

func (r *Repository) Items() catalog.ItemRepository {
	return &itemRepo{s: r.s}
}

func (r *Repository) Inventory() inventory.LevelRepository {
	return &levelRepo{s: r.s}
}

func (r *Repository) InventoryTransactions() inventory.TransactionRepository {
	return &transactionRepo{s: r.s}
}

func (r *Repository) Orders() orders.OrderRepository {
	return &orderRepo{s: r.s}
}

func (r *Repository) OrderItems() orders.OrderItemRepository {
	return &orderItemRepo{s: r.s}
}

func (r *Repository) Shipments() shipments.Repository {
	return &shipmentRepo{s: r.s}
}

func (r *Repository) Activity() activity.Repository {
	return &activityRepo{s: r.s}
}

func (r *Repository) Sessions() auth.SessionStore {
	return &sessionRepo{s: r.s}
}

// WithTx runs fn against the same store. The writes that need atomicity are
// single lock-held operations on their repositories, so there is nothing
// extra to stage or roll back here.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	return fn(ctx, r)
}

func (r *Repository) Ping(ctx context.Context) error {
	return nil
}

func (r *Repository) Close() {}

func now() time.Time {
	return time.Now().UTC()
}

// containsFold reports whether s contains substr, ignoring case. Empty
// substr matches everything, which lets list filters treat an absent query
// as a no-op.
func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
