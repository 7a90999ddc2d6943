package orders

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrItemNotFound     = errors.New("order item not found")
	ErrOrderNumberTaken = errors.New("order number is already taken in this organization")
)

// Order is a customer order. OrderNumber is unique within the owning
// organization.
type Order struct {
	ID              int64
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	Status          string
	Notes           string
	OrganizationID  int64
	CreatedBy       *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is one line of an order. Quantity is what the customer asked for;
// Allocated and Picked track warehouse progress against it.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ItemID    int64
	Quantity  int64
	Allocated int64
	Picked    int64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Filters struct {
	OrganizationID *int64
	Status         string
	Query          string
}

/// OrderRepository persists orders. CreateWithItems must run atomically: the
// order row and all of its item rows appear together or not at all.
type OrderRepository interface {
	List(ctx context.Context, filters Filters) ([]Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Order, error)
	GetByNumber(ctx context.Context, organizationID int64, orderNumber string) (*Order, error)
	CreateWithItems(ctx context.Context, order Order, items []OrderItem) (*Order, []OrderItem, error)
	Update(ctx context.Context, order Order) (*Order, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type OrderItemRepository interface {
	ListByOrder(ctx context.Context, orderID int64) ([]OrderItem, error)
	ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]OrderItem, error)
	GetByID(ctx context.Context, id int64) (*OrderItem, error)
	Update(ctx context.Context, item OrderItem) (*OrderItem, error)
}
