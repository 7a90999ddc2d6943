package inventory

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("inventory level not found")
	ErrTransactionNotFound = errors.New("inventory transaction not found")
)

// Transaction types. Receiving and adjustment move on-hand stock; allocation
// and release move the allocated counter; pick consumes allocated stock.
const (
	TypeReceiving  = "receiving"
	TypeAdjustment = "adjustment"
	TypeAllocation = "allocation"
	TypeRelease    = "release"
	TypePick       = "pick"
)

// TransactionTypes lists the accepted type tags in ledger order.
func TransactionTypes() []string {
	return []string{TypeReceiving, TypeAdjustment, TypeAllocation, TypeRelease, TypePick}
}

// Level is the stock of one item in one bin. At most one level row exists per
// (item, bin) pair; concurrent writes to the same pair merge instead of
// duplicating.
type Level struct {
	ID        int64
	ItemID    int64
	BinID     int64
	Quantity  int64
	Allocated int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available is the on-hand quantity not reserved for orders.
func (l Level) Available() int64 {
	return l.Quantity - l.Allocated
}

// Transaction is an immutable ledger entry recording one signed stock
// movement against an (item, bin) pair.
type Transaction struct {
	ID        int64
	ItemID    int64
	BinID     int64
	Delta     int64
	Type      string
	Reference string
	Note      string
	UserID    *int64
	CreatedAt time.Time
}

// Change is one stock movement to apply. QuantityDelta adjusts on-hand stock,
// AllocatedDelta adjusts the allocation counter; the ledger entry records
// Delta as the movement's signed magnitude.
type Change struct {
	ItemID         int64
	BinID          int64
	QuantityDelta  int64
	AllocatedDelta int64
	Delta          int64
	Type           string
	Reference      string
	Note           string
	UserID         *int64
}

type LevelFilters struct {
	ItemID *int64
	BinID  *int64
}

type TransactionFilters struct {
	ItemID    *int64
	BinID     *int64
	Type      string
	Reference string
}

// LevelRepository persists stock levels. Apply must run atomically: the level
// upsert (merging into an existing (item, bin) row when present) and the
// ledger append either both happen or neither does.
type LevelRepository interface {
	List(ctx context.Context, filters LevelFilters) ([]Level, error)
	ListByItemIDs(ctx context.Context, itemIDs []int64) ([]Level, error)
	GetByID(ctx context.Context, id int64) (*Level, error)
	GetByItemAndBin(ctx context.Context, itemID, binID int64) (*Level, error)
	TotalOnHandByItem(ctx context.Context, itemID int64) (int64, error)
	Apply(ctx context.Context, change Change) (*Level, *Transaction, error)
}

// TransactionRepository reads the immutable ledger.
type TransactionRepository interface {
	List(ctx context.Context, filters TransactionFilters) ([]Transaction, error)
	GetByID(ctx context.Context, id int64) (*Transaction, error)
}
