package inventory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/audit"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/warehouses"
	"github.com/warebase/server/internal/validation"
)

// ItemSource is satisfied by the catalog item repository. Reorder thresholds
// for low-stock alerts come from the item record.
type ItemSource interface {
	GetByID(ctx context.Context, id int64) (*catalog.Item, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// BinChecker is satisfied by the bin repository.
type BinChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// LowStockNotifier is notified after a stock movement leaves an item at or
// below its reorder point. Implementations must tolerate repeat calls.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, item catalog.Item, onHand int64) error
}

// Service manages stock levels and their immutable movement ledger.
type Service struct {
	levels       LevelRepository
	transactions TransactionRepository
	items        ItemSource
	bins         BinChecker
	notifier     LowStockNotifier
	recorder     *audit.Recorder
	validate     *validator.Validate
	logger       zerolog.Logger
}

func NewService(
	levels LevelRepository,
	transactions TransactionRepository,
	items ItemSource,
	bins BinChecker,
	notifier LowStockNotifier,
	recorder *audit.Recorder,
	logger zerolog.Logger,
) *Service {
	return &Service{
		levels:       levels,
		transactions: transactions,
		items:        items,
		bins:         bins,
		notifier:     notifier,
		recorder:     recorder,
		validate:     validation.New(),
		logger:       logger.With().Str("component", "inventory").Logger(),
	}
}

type CreateParams struct {
	ItemID    int64  `json:"item_id" validate:"required,gt=0"`
	BinID     int64  `json:"bin_id" validate:"required,gt=0"`
	Quantity  int64  `json:"quantity" validate:"gt=0"`
	Allocated int64  `json:"allocated" validate:"gte=0"`
	Type      string `json:"type" validate:"omitempty,oneof=receiving adjustment allocation release pick"`
	Reference string `json:"reference" validate:"max=100"`
	Note      string `json:"note" validate:"max=2000"`
}

type UpdateParams struct {
	Quantity  *int64 `json:"quantity" validate:"omitempty,gte=0"`
	Allocated *int64 `json:"allocated" validate:"omitempty,gte=0"`
	Note      string `json:"note" validate:"max=2000"`
}

func (s *Service) List(ctx context.Context, filters LevelFilters) ([]Level, error) {
	return s.levels.List(ctx, filters)
}

func (s *Service) ListByItemIDs(ctx context.Context, itemIDs []int64) ([]Level, error) {
	return s.levels.ListByItemIDs(ctx, itemIDs)
}

func (s *Service) Get(ctx context.Context, id int64) (*Level, error) {
	return s.levels.GetByID(ctx, id)
}

// Create records incoming stock. If a level row already exists for the
// (item, bin) pair the quantity is added to it; the merge and the ledger
// append happen in one storage transaction.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Level, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	ok, err := s.items.Exists(ctx, params.ItemID)
	if err != nil {
		return nil, fmt.Errorf("check item: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("item %d: %w", params.ItemID, catalog.ErrItemNotFound)
	}
	ok, err = s.bins.Exists(ctx, params.BinID)
	if err != nil {
		return nil, fmt.Errorf("check bin: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("bin %d: %w", params.BinID, warehouses.ErrBinNotFound)
	}

	txType := params.Type
	if txType == "" {
		txType = TypeReceiving
	}
	reference := params.Reference
	if reference == "" {
		reference = ulid.Make().String()
	}

	level, tx, err := s.levels.Apply(ctx, Change{
		ItemID:         params.ItemID,
		BinID:          params.BinID,
		QuantityDelta:  params.Quantity,
		AllocatedDelta: params.Allocated,
		Delta:          params.Quantity,
		Type:           txType,
		Reference:      reference,
		Note:           params.Note,
		UserID:         actorID(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("apply stock movement: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     "inventory.created",
		EntityType: "inventory",
		EntityID:   strconv.FormatInt(level.ID, 10),
		Details: map[string]interface{}{
			"item_id": level.ItemID, "bin_id": level.BinID,
			"delta": tx.Delta, "quantity": level.Quantity, "reference": tx.Reference,
		},
	})

	s.checkLowStock(ctx, level.ItemID)
	return level, nil
}

// Update sets the on-hand and allocated counters to the submitted values.
// Changes are applied as a delta so the ledger records the movement.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Level, error) {
	if err := validation.Struct(s.validate, params); err != nil {
		return nil, err
	}

	existing, err := s.levels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var quantityDelta, allocatedDelta int64
	if params.Quantity != nil {
		quantityDelta = *params.Quantity - existing.Quantity
	}
	if params.Allocated != nil {
		allocatedDelta = *params.Allocated - existing.Allocated
	}
	if quantityDelta == 0 && allocatedDelta == 0 {
		return existing, nil
	}

	delta := quantityDelta
	txType := TypeAdjustment
	if quantityDelta == 0 {
		delta = allocatedDelta
		if allocatedDelta > 0 {
			txType = TypeAllocation
		} else {
			txType = TypeRelease
		}
	}

	level, tx, err := s.levels.Apply(ctx, Change{
		ItemID:         existing.ItemID,
		BinID:          existing.BinID,
		QuantityDelta:  quantityDelta,
		AllocatedDelta: allocatedDelta,
		Delta:          delta,
		Type:           txType,
		Reference:      ulid.Make().String(),
		Note:           params.Note,
		UserID:         actorID(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("apply stock movement: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     "inventory.updated",
		EntityType: "inventory",
		EntityID:   strconv.FormatInt(level.ID, 10),
		Details: map[string]interface{}{
			"item_id": level.ItemID, "bin_id": level.BinID,
			"delta": tx.Delta, "quantity": level.Quantity, "allocated": level.Allocated,
		},
	})

	s.checkLowStock(ctx, level.ItemID)
	return level, nil
}

func (s *Service) ListTransactions(ctx context.Context, filters TransactionFilters) ([]Transaction, error) {
	return s.transactions.List(ctx, filters)
}

func (s *Service) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	return s.transactions.GetByID(ctx, id)
}

// checkLowStock fires the notifier when an item's total on-hand stock sits at
// or below its reorder point. Failures are logged, never surfaced; the stock
// movement already committed.
func (s *Service) checkLowStock(ctx context.Context, itemID int64) {
	if s.notifier == nil {
		return
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("low stock check: load item")
		return
	}
	if item.ReorderPoint <= 0 {
		return
	}
	total, err := s.levels.TotalOnHandByItem(ctx, itemID)
	if err != nil {
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("low stock check: total on hand")
		return
	}
	if total > item.ReorderPoint {
		return
	}
	if err := s.notifier.NotifyLowStock(ctx, *item, total); err != nil {
		s.logger.Error().Err(err).Str("sku", item.SKU).Msg("low stock notification failed")
	}
}

func actorID(ctx context.Context) *int64 {
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		return &p.UserID
	}
	return nil
}
