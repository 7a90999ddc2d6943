package warehouses

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrZoneNotFound      = errors.New("zone not found")
	ErrBinTypeNotFound   = errors.New("bin type not found")
	ErrBinNotFound       = errors.New("bin not found")
)

// Warehouse is a physical site owned by an organization.
type Warehouse struct {
	ID             int64
	Name           string
	Code           string
	Address        string
	OrganizationID int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Zone is a named area inside a warehouse (receiving, cold storage, ...).
type Zone struct {
	ID          int64
	Name        string
	Code        string
	WarehouseID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BinType describes the capacity of a class of bins. Dimensions are in
// centimeters, weight in kilograms, volume in liters.
type BinType struct {
	ID             int64
	Name           string
	MaxWeight      float64
	MaxVolume      float64
	Length         float64
	Width          float64
	Height         float64
	OrganizationID int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Bin is the smallest storage location unit, addressed within a zone.
type Bin struct {
	ID        int64
	Name      string
	Code      string
	ZoneID    int64
	BinTypeID *int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WarehouseFilters struct {
	OrganizationID *int64
	Query          string
}

type ZoneFilters struct {
	WarehouseID *int64
	Query       string
}

type BinTypeFilters struct {
	OrganizationID *int64
	Query          string
}

type BinFilters struct {
	ZoneID    *int64
	BinTypeID *int64
	Active    *bool
	Query     string
}

type WarehouseRepository interface {
	List(ctx context.Context, filters WarehouseFilters) ([]Warehouse, error)
	GetByID(ctx context.Context, id int64) (*Warehouse, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Warehouse, error)
	Create(ctx context.Context, warehouse Warehouse) (*Warehouse, error)
	Update(ctx context.Context, warehouse Warehouse) (*Warehouse, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type ZoneRepository interface {
	List(ctx context.Context, filters ZoneFilters) ([]Zone, error)
	GetByID(ctx context.Context, id int64) (*Zone, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Zone, error)
	Create(ctx context.Context, zone Zone) (*Zone, error)
	Update(ctx context.Context, zone Zone) (*Zone, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type BinTypeRepository interface {
	List(ctx context.Context, filters BinTypeFilters) ([]BinType, error)
	GetByID(ctx context.Context, id int64) (*BinType, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]BinType, error)
	Create(ctx context.Context, binType BinType) (*BinType, error)
	Update(ctx context.Context, binType BinType) (*BinType, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type BinRepository interface {
	List(ctx context.Context, filters BinFilters) ([]Bin, error)
	GetByID(ctx context.Context, id int64) (*Bin, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Bin, error)
	Create(ctx context.Context, bin Bin) (*Bin, error)
	Update(ctx context.Context, bin Bin) (*Bin, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
