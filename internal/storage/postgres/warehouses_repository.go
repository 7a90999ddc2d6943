package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/domain/warehouses"
)

var (
	_ warehouses.WarehouseRepository = (*WarehouseRepository)(nil)
	_ warehouses.ZoneRepository      = (*ZoneRepository)(nil)
	_ warehouses.BinTypeRepository   = (*BinTypeRepository)(nil)
	_ warehouses.BinRepository       = (*BinRepository)(nil)
)

type WarehouseRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *WarehouseRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const warehouseColumns = `id, name, code, address, organization_id, created_at, updated_at`

func scanWarehouse(row pgx.Row) (*warehouses.Warehouse, error) {
	var w warehouses.Warehouse
	if err := row.Scan(&w.ID, &w.Name, &w.Code, &w.Address, &w.OrganizationID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WarehouseRepository) List(ctx context.Context, filters warehouses.WarehouseFilters) ([]warehouses.Warehouse, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+warehouseColumns+`
  FROM warehouses
 WHERE ($1::bigint IS NULL OR organization_id = $1)
   AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR code ILIKE '%' || $2 || '%')
 ORDER BY id
`, filters.OrganizationID, nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var out []warehouses.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r *WarehouseRepository) GetByID(ctx context.Context, id int64) (*warehouses.Warehouse, error) {
	w, err := scanWarehouse(r.queryer().QueryRow(ctx, `
SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, warehouses.ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("get warehouse %d: %w", id, err)
	}
	return w, nil
}

func (r *WarehouseRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]warehouses.Warehouse, error) {
	if len(ids) == 0 {
		return map[int64]warehouses.Warehouse{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+warehouseColumns+` FROM warehouses WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get warehouses by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]warehouses.Warehouse, len(ids))
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		out[w.ID] = *w
	}
	return out, rows.Err()
}

func (r *WarehouseRepository) Create(ctx context.Context, w warehouses.Warehouse) (*warehouses.Warehouse, error) {
	created, err := scanWarehouse(r.queryer().QueryRow(ctx, `
INSERT INTO warehouses (name, code, address, organization_id)
VALUES ($1, $2, $3, $4)
RETURNING `+warehouseColumns+`
`, w.Name, w.Code, w.Address, w.OrganizationID))
	if err != nil {
		return nil, fmt.Errorf("create warehouse: %w", err)
	}
	return created, nil
}

func (r *WarehouseRepository) Update(ctx context.Context, w warehouses.Warehouse) (*warehouses.Warehouse, error) {
	updated, err := scanWarehouse(r.queryer().QueryRow(ctx, `
UPDATE warehouses
   SET name = $2, code = $3, address = $4, organization_id = $5, updated_at = now()
 WHERE id = $1
RETURNING `+warehouseColumns+`
`, w.ID, w.Name, w.Code, w.Address, w.OrganizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, warehouses.ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("update warehouse %d: %w", w.ID, err)
	}
	return updated, nil
}

func (r *WarehouseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM warehouses WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("warehouse exists %d: %w", id, err)
	}
	return exists, nil
}

type ZoneRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *ZoneRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const zoneColumns = `id, name, code, warehouse_id, created_at, updated_at`

func scanZone(row pgx.Row) (*warehouses.Zone, error) {
	var z warehouses.Zone
	if err := row.Scan(&z.ID, &z.Name, &z.Code, &z.WarehouseID, &z.CreatedAt, &z.UpdatedAt); err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *ZoneRepository) List(ctx context.Context, filters warehouses.ZoneFilters) ([]warehouses.Zone, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+zoneColumns+`
  FROM zones
 WHERE ($1::bigint IS NULL OR warehouse_id = $1)
   AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR code ILIKE '%' || $2 || '%')
 ORDER BY id
`, filters.WarehouseID, nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	var out []warehouses.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		out = append(out, *z)
	}
	return out, rows.Err()
}

func (r *ZoneRepository) GetByID(ctx context.Context, id int64) (*warehouses.Zone, error) {
	z, err := scanZone(r.queryer().QueryRow(ctx, `
SELECT `+zoneColumns+` FROM zones WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, warehouses.ErrZoneNotFound
		}
		return nil, fmt.Errorf("get zone %d: %w", id, err)
	}
	return z, nil
}

func (r *ZoneRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]warehouses.Zone, error) {
	if len(ids) == 0 {
		return map[int64]warehouses.Zone{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+zoneColumns+` FROM zones WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get zones by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]warehouses.Zone, len(ids))
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		out[z.ID] = *z
	}
	return out, rows.Err()
}

func (r *ZoneRepository) Create(ctx context.Context, z warehouses.Zone) (*warehouses.Zone, error) {
	created, err := scanZone(r.queryer().QueryRow(ctx, `
INSERT INTO zones (name, code, warehouse_id)
VALUES ($1, $2, $3)
RETURNING `+zoneColumns+`
`, z.Name, z.Code, z.WarehouseID))
	if err != nil {
		return nil, fmt.Errorf("create zone: %w", err)
	}
	return created, nil
}

func (r *ZoneRepository) Update(ctx context.Context, z warehouses.Zone) (*warehouses.Zone, error) {
	updated, err := scanZone(r.queryer().QueryRow(ctx, `
UPDATE zones
   SET name = $2, code = $3, warehouse_id = $4, updated_at = now()
 WHERE id = $1
RETURNING `+zoneColumns+`
`, z.ID, z.Name, z.Code, z.WarehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, warehouses.ErrZoneNotFound
		}
		return nil, fmt.Errorf("update zone %d: %w", z.ID, err)
	}
	return updated, nil
}

func (r *ZoneRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM zones WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("zone exists %d: %w", id, err)
	}
	return exists, nil
}

type BinTypeRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *BinTypeRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const binTypeColumns = `id, name, max_weight, max_volume, length, width, height, organization_id, created_at, updated_at`

func scanBinType(row pgx.Row) (*warehouses.BinType, error) {
	var bt warehouses.BinType
	if err := row.Scan(
		&bt.ID,
		&bt.Name,
		&bt.MaxWeight,
		&bt.MaxVolume,
		&bt.Length,
		&bt.Width,
		&bt.Height,
		&bt.OrganizationID,
		&bt.CreatedAt,
		&bt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &bt, nil
}

func (r *BinTypeRepository) List(ctx context.Context, filters warehouses.BinTypeFilters) ([]warehouses.BinType, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+binTypeColumns+`
  FROM bin_types
 WHERE ($1::bigint IS NULL OR organization_id = $1)
   AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%')
 ORDER BY id
`, filters.OrganizationID, nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list bin types: %w", err)
	}
	defer rows.Close()

	var out []warehouses.BinType
	for rows.Next() {
		bt, err := scanBinType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bin type: %w", err)
		}
		out = append(out, *bt)
	}
	return out, rows.Err()
}

func (r *BinTypeRepository) GetByID(ctx context.Context, id int64) (*warehouses.BinType, error) {
	bt, err := scanBinType(r.queryer().QueryRow(ctx, `
SELECT `+binTypeColumns+` FROM bin_types WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, warehouses.ErrBinTypeNotFound
		}
		return nil, fmt.Errorf("get bin type %d: %w", id, err)
	}
	return bt, nil
}

func (r *BinTypeRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]warehouses.BinType, error) {
	if len(ids) == 0 {
		return map[int64]warehouses.BinType{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+binTypeColumns+` FROM bin_types WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get bin types by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]warehouses.BinType, len(ids))
	for rows.Next() {
		bt, err := scanBinType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bin type: %w", err)
		}
		out[bt.ID] = *bt
	}
	return out, rows.Err()
}

func (r *BinTypeRepository) Create(ctx context.Context, bt warehouses.BinType) (*warehouses.BinType, error) {
	created, err := scanBinType(r.queryer().QueryRow(ctx, `
INSERT INTO bin_types (name, max_weight, max_volume, length, width, height, organization_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+binTypeColumns+`
`, bt.Name, bt.MaxWeight, bt.MaxVolume, bt.Length, bt.Width, bt.Height, bt.OrganizationID))
	if err != nil {
		return nil, fmt.Errorf("create bin type: %w", err)
	}
	return created, nil
}

func (r *BinTypeRepository) Update(ctx context.Context, bt warehouses.BinType) (*warehouses.BinType, error) {
	updated, err := scanBinType(r.queryer().QueryRow(ctx, `
UPDATE bin_types
   SET name = $2, max_weight = $3, max_volume = $4, length = $5, width = $6, height = $7,
       organization_id = $8, updated_at = now()
 WHERE id = $1
RETURNING `+binTypeColumns+`
`, bt.ID, bt.Name, bt.MaxWeight, bt.MaxVolume, bt.Length, bt.Width, bt.Height, bt.OrganizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, warehouses.ErrBinTypeNotFound
		}
		return nil, fmt.Errorf("update bin type %d: %w", bt.ID, err)
	}
	return updated, nil
}

func (r *BinTypeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bin_types WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("bin type exists %d: %w", id, err)
	}
	return exists, nil
}

type BinRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *BinRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const binColumns = `id, name, code, zone_id, bin_type_id, active, created_at, updated_at`

func scanBin(row pgx.Row) (*warehouses.Bin, error) {
	var b warehouses.Bin
	if err := row.Scan(&b.ID, &b.Name, &b.Code, &b.ZoneID, &b.BinTypeID, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BinRepository) List(ctx context.Context, filters warehouses.BinFilters) ([]warehouses.Bin, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+binColumns+`
  FROM bins
 WHERE ($1::bigint IS NULL OR zone_id = $1)
   AND ($2::bigint IS NULL OR bin_type_id = $2)
   AND ($3::boolean IS NULL OR active = $3)
   AND ($4::text IS NULL OR name ILIKE '%' || $4 || '%' OR code ILIKE '%' || $4 || '%')
 ORDER BY id
`, filters.ZoneID, filters.BinTypeID, filters.Active, nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	defer rows.Close()

	var out []warehouses.Bin
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bin: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BinRepository) GetByID(ctx context.Context, id int64) (*warehouses.Bin, error) {
	b, err := scanBin(r.queryer().QueryRow(ctx, `
SELECT `+binColumns+` FROM bins WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, warehouses.ErrBinNotFound
		}
		return nil, fmt.Errorf("get bin %d: %w", id, err)
	}
	return b, nil
}

func (r *BinRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]warehouses.Bin, error) {
	if len(ids) == 0 {
		return map[int64]warehouses.Bin{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+binColumns+` FROM bins WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get bins by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]warehouses.Bin, len(ids))
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bin: %w", err)
		}
		out[b.ID] = *b
	}
	return out, rows.Err()
}

func (r *BinRepository) Create(ctx context.Context, b warehouses.Bin) (*warehouses.Bin, error) {
	created, err := scanBin(r.queryer().QueryRow(ctx, `
INSERT INTO bins (name, code, zone_id, bin_type_id, active)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+binColumns+`
`, b.Name, b.Code, b.ZoneID, b.BinTypeID, b.Active))
	if err != nil {
		return nil, fmt.Errorf("create bin: %w", err)
	}
	return created, nil
}

func (r *BinRepository) Update(ctx context.Context, b warehouses.Bin) (*warehouses.Bin, error) {
	updated, err := scanBin(r.queryer().QueryRow(ctx, `
UPDATE bins
   SET name = $2, code = $3, zone_id = $4, bin_type_id = $5, active = $6, updated_at = now()
 WHERE id = $1
RETURNING `+binColumns+`
`, b.ID, b.Name, b.Code, b.ZoneID, b.BinTypeID, b.Active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, warehouses.ErrBinNotFound
		}
		return nil, fmt.Errorf("update bin %d: %w", b.ID, err)
	}
	return updated, nil
}

func (r *BinRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bins WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("bin exists %d: %w", id, err)
	}
	return exists, nil
}
