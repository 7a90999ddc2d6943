package memory

import (
	"context"
	"sort"

	"github.com/warebase/server/internal/domain/inventory"
)

var (
	_ inventory.LevelRepository       = (*levelRepo)(nil)
	_ inventory.TransactionRepository = (*transactionRepo)(nil)
)

type levelRepo struct {
	s *store
}

func (r *levelRepo) List(ctx context.Context, filters inventory.LevelFilters) ([]inventory.Level, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]inventory.Level, 0, len(r.s.levels))
	for _, level := range r.s.levels {
		if filters.ItemID != nil && level.ItemID != *filters.ItemID {
			continue
		}
		if filters.BinID != nil && level.BinID != *filters.BinID {
			continue
		}
		out = append(out, level)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *levelRepo) ListByItemIDs(ctx context.Context, itemIDs []int64) ([]inventory.Level, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	var out []inventory.Level
	for _, level := range r.s.levels {
		if _, ok := wanted[level.ItemID]; ok {
			out = append(out, level)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *levelRepo) GetByID(ctx context.Context, id int64) (*inventory.Level, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	level, ok := r.s.levels[id]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	return &level, nil
}

func (r *levelRepo) GetByItemAndBin(ctx context.Context, itemID, binID int64) (*inventory.Level, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.levelByPair[[2]int64{itemID, binID}]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	level := r.s.levels[id]
	return &level, nil
}

func (r *levelRepo) TotalOnHandByItem(ctx context.Context, itemID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int64
	for _, level := range r.s.levels {
		if level.ItemID == itemID {
			total += level.Quantity
		}
	}
	return total, nil
}

// Apply merges the change into the (item, bin) level and appends the ledger
// entry under one hold of the write lock, so no reader ever sees one without
// the other.
func (r *levelRepo) Apply(ctx context.Context, change inventory.Change) (*inventory.Level, *inventory.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ts := now()
	pair := [2]int64{change.ItemID, change.BinID}

	var level inventory.Level
	if id, ok := r.s.levelByPair[pair]; ok {
		level = r.s.levels[id]
		level.Quantity += change.QuantityDelta
		level.Allocated += change.AllocatedDelta
		level.UpdatedAt = ts
	} else {
		level = inventory.Level{
			ID:        r.s.nextID("inventory_levels"),
			ItemID:    change.ItemID,
			BinID:     change.BinID,
			Quantity:  change.QuantityDelta,
			Allocated: change.AllocatedDelta,
			CreatedAt: ts,
			UpdatedAt: ts,
		}
		r.s.levelByPair[pair] = level.ID
	}
	r.s.levels[level.ID] = level

	tx := inventory.Transaction{
		ID:        r.s.nextID("inventory_transactions"),
		ItemID:    change.ItemID,
		BinID:     change.BinID,
		Delta:     change.Delta,
		Type:      change.Type,
		Reference: change.Reference,
		Note:      change.Note,
		UserID:    change.UserID,
		CreatedAt: ts,
	}
	r.s.transactions[tx.ID] = tx

	return &level, &tx, nil
}

type transactionRepo struct {
	s *store
}

func (r *transactionRepo) List(ctx context.Context, filters inventory.TransactionFilters) ([]inventory.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]inventory.Transaction, 0, len(r.s.transactions))
	for _, tx := range r.s.transactions {
		if filters.ItemID != nil && tx.ItemID != *filters.ItemID {
			continue
		}
		if filters.BinID != nil && tx.BinID != *filters.BinID {
			continue
		}
		if filters.Type != "" && tx.Type != filters.Type {
			continue
		}
		if filters.Reference != "" && tx.Reference != filters.Reference {
			continue
		}
		out = append(out, tx)
	}
	// Ledger reads are most-recent-first.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *transactionRepo) GetByID(ctx context.Context, id int64) (*inventory.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tx, ok := r.s.transactions[id]
	if !ok {
		return nil, inventory.ErrTransactionNotFound
	}
	return &tx, nil
}
