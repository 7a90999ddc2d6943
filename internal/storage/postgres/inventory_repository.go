package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/domain/inventory"
)

var (
	_ inventory.LevelRepository       = (*LevelRepository)(nil)
	_ inventory.TransactionRepository = (*TransactionRepository)(nil)
)

type LevelRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *LevelRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const levelColumns = `id, item_id, bin_id, quantity, allocated, created_at, updated_at`

func scanLevel(row pgx.Row) (*inventory.Level, error) {
	var level inventory.Level
	if err := row.Scan(&level.ID, &level.ItemID, &level.BinID, &level.Quantity, &level.Allocated, &level.CreatedAt, &level.UpdatedAt); err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *LevelRepository) List(ctx context.Context, filters inventory.LevelFilters) ([]inventory.Level, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+levelColumns+`
  FROM inventory_levels
 WHERE ($1::bigint IS NULL OR item_id = $1)
   AND ($2::bigint IS NULL OR bin_id = $2)
 ORDER BY id
`, filters.ItemID, filters.BinID)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels: %w", err)
	}
	defer rows.Close()

	var out []inventory.Level
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		out = append(out, *level)
	}
	return out, rows.Err()
}

func (r *LevelRepository) ListByItemIDs(ctx context.Context, itemIDs []int64) ([]inventory.Level, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+levelColumns+`
  FROM inventory_levels
 WHERE item_id = ANY($1)
 ORDER BY id
`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels by items: %w", err)
	}
	defer rows.Close()

	var out []inventory.Level
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		out = append(out, *level)
	}
	return out, rows.Err()
}

func (r *LevelRepository) GetByID(ctx context.Context, id int64) (*inventory.Level, error) {
	level, err := scanLevel(r.queryer().QueryRow(ctx, `
SELECT `+levelColumns+` FROM inventory_levels WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventory.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory level %d: %w", id, err)
	}
	return level, nil
}

func (r *LevelRepository) GetByItemAndBin(ctx context.Context, itemID, binID int64) (*inventory.Level, error) {
	level, err := scanLevel(r.queryer().QueryRow(ctx, `
SELECT `+levelColumns+` FROM inventory_levels WHERE item_id = $1 AND bin_id = $2
`, itemID, binID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventory.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory level for item %d bin %d: %w", itemID, binID, err)
	}
	return level, nil
}

func (r *LevelRepository) TotalOnHandByItem(ctx context.Context, itemID int64) (int64, error) {
	var total int64
	err := r.queryer().QueryRow(ctx, `
SELECT COALESCE(SUM(quantity), 0) FROM inventory_levels WHERE item_id = $1
`, itemID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total on hand for item %d: %w", itemID, err)
	}
	return total, nil
}

// Apply upserts the (item, bin) level and appends the ledger entry in one
// statement. A single data-modifying CTE is atomic in Postgres, so the level
// and its ledger entry can never diverge, and the ON CONFLICT arm makes
// concurrent writes to the same pair merge instead of failing.
func (r *LevelRepository) Apply(ctx context.Context, change inventory.Change) (*inventory.Level, *inventory.Transaction, error) {
	row := r.queryer().QueryRow(ctx, `
WITH level AS (
    INSERT INTO inventory_levels (item_id, bin_id, quantity, allocated)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (item_id, bin_id) DO UPDATE
       SET quantity   = inventory_levels.quantity + EXCLUDED.quantity,
           allocated  = inventory_levels.allocated + EXCLUDED.allocated,
           updated_at = now()
    RETURNING id, item_id, bin_id, quantity, allocated, created_at, updated_at
), ledger AS (
    INSERT INTO inventory_transactions (item_id, bin_id, delta, type, reference, note, user_id)
    VALUES ($1, $2, $5, $6, $7, $8, $9)
    RETURNING id, delta, type, reference, note, user_id, created_at
)
SELECT level.id, level.item_id, level.bin_id, level.quantity, level.allocated, level.created_at, level.updated_at,
       ledger.id, ledger.delta, ledger.type, ledger.reference, ledger.note, ledger.user_id, ledger.created_at
  FROM level, ledger
`, change.ItemID, change.BinID, change.QuantityDelta, change.AllocatedDelta,
		change.Delta, change.Type, change.Reference, change.Note, change.UserID)

	var level inventory.Level
	var tx inventory.Transaction
	if err := row.Scan(
		&level.ID, &level.ItemID, &level.BinID, &level.Quantity, &level.Allocated, &level.CreatedAt, &level.UpdatedAt,
		&tx.ID, &tx.Delta, &tx.Type, &tx.Reference, &tx.Note, &tx.UserID, &tx.CreatedAt,
	); err != nil {
		return nil, nil, fmt.Errorf("apply inventory change for item %d bin %d: %w", change.ItemID, change.BinID, err)
	}
	tx.ItemID = level.ItemID
	tx.BinID = level.BinID
	return &level, &tx, nil
}

type TransactionRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *TransactionRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const transactionColumns = `id, item_id, bin_id, delta, type, reference, note, user_id, created_at`

func scanTransaction(row pgx.Row) (*inventory.Transaction, error) {
	var tx inventory.Transaction
	if err := row.Scan(&tx.ID, &tx.ItemID, &tx.BinID, &tx.Delta, &tx.Type, &tx.Reference, &tx.Note, &tx.UserID, &tx.CreatedAt); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) List(ctx context.Context, filters inventory.TransactionFilters) ([]inventory.Transaction, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+transactionColumns+`
  FROM inventory_transactions
 WHERE ($1::bigint IS NULL OR item_id = $1)
   AND ($2::bigint IS NULL OR bin_id = $2)
   AND ($3::text IS NULL OR type = $3)
   AND ($4::text IS NULL OR reference = $4)
 ORDER BY id DESC
`, filters.ItemID, filters.BinID, nilIfEmpty(filters.Type), nilIfEmpty(filters.Reference))
	if err != nil {
		return nil, fmt.Errorf("list inventory transactions: %w", err)
	}
	defer rows.Close()

	var out []inventory.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory transaction: %w", err)
		}
		out = append(out, *tx)
	}
	return out, rows.Err()
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*inventory.Transaction, error) {
	tx, err := scanTransaction(r.queryer().QueryRow(ctx, `
SELECT `+transactionColumns+` FROM inventory_transactions WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventory.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get inventory transaction %d: %w", id, err)
	}
	return tx, nil
}
