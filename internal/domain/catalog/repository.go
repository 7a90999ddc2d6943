package catalog

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrSKUTaken         = errors.New("sku is already taken in this organization")
)

// Category groups items for reporting and browsing.
type Category struct {
	ID             int64
	Name           string
	Code           string
	Description    string
	OrganizationID int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Supplier is a vendor items are sourced from.
type Supplier struct {
	ID             int64
	Name           string
	Code           string
	Description    string
	ContactName    string
	ContactEmail   string
	ContactPhone   string
	OrganizationID int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Item is a stock-keeping unit. SKU is unique within the owning organization.
// Dimensions are in centimeters, weight in kilograms. ReorderPoint is the
// on-hand quantity at which replenishment should be triggered; ReorderQuantity
// is how much to reorder.
type Item struct {
	ID              int64
	SKU             string
	Name            string
	Description     string
	Barcode         string
	CategoryID      *int64
	SupplierID      *int64
	Length          float64
	Width           float64
	Height          float64
	Weight          float64
	ReorderPoint    int64
	ReorderQuantity int64
	OrganizationID  int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CategoryFilters struct {
	OrganizationID *int64
	Query          string
}

type SupplierFilters struct {
	OrganizationID *int64
	Query          string
}

type ItemFilters struct {
	OrganizationID *int64
	CategoryID     *int64
	SupplierID     *int64
	Query          string
}

type CategoryRepository interface {
	List(ctx context.Context, filters CategoryFilters) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Category, error)
	Create(ctx context.Context, category Category) (*Category, error)
	Update(ctx context.Context, category Category) (*Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type SupplierRepository interface {
	List(ctx context.Context, filters SupplierFilters) ([]Supplier, error)
	GetByID(ctx context.Context, id int64) (*Supplier, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Supplier, error)
	Create(ctx context.Context, supplier Supplier) (*Supplier, error)
	Update(ctx context.Context, supplier Supplier) (*Supplier, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type ItemRepository interface {
	List(ctx context.Context, filters ItemFilters) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Item, error)
	GetBySKU(ctx context.Context, organizationID int64, sku string) (*Item, error)
	Create(ctx context.Context, item Item) (*Item, error)
	Update(ctx context.Context, item Item) (*Item, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
