package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/domain/shipments"
)

var _ shipments.Repository = (*ShipmentRepository)(nil)

type ShipmentRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *ShipmentRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const shipmentColumns = `id, order_id, carrier, tracking_number, cost, weight, length, width, height, label_url, status, created_by, created_at, updated_at`

func scanShipment(row pgx.Row) (*shipments.Shipment, error) {
	var sh shipments.Shipment
	if err := row.Scan(
		&sh.ID,
		&sh.OrderID,
		&sh.Carrier,
		&sh.TrackingNumber,
		&sh.Cost,
		&sh.Weight,
		&sh.Length,
		&sh.Width,
		&sh.Height,
		&sh.LabelURL,
		&sh.Status,
		&sh.CreatedBy,
		&sh.CreatedAt,
		&sh.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sh, nil
}

func (r *ShipmentRepository) List(ctx context.Context, filters shipments.Filters) ([]shipments.Shipment, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+shipmentColumns+`
  FROM shipments
 WHERE ($1::bigint IS NULL OR order_id = $1)
   AND ($2::text IS NULL OR status = $2)
   AND ($3::text IS NULL OR carrier ILIKE '%' || $3 || '%')
 ORDER BY id
`, filters.OrderID, nilIfEmpty(filters.Status), nilIfEmpty(filters.Carrier))
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var out []shipments.Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		out = append(out, *sh)
	}
	return out, rows.Err()
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id int64) (*shipments.Shipment, error) {
	sh, err := scanShipment(r.queryer().QueryRow(ctx, `
SELECT `+shipmentColumns+` FROM shipments WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipments.ErrNotFound
		}
		return nil, fmt.Errorf("get shipment %d: %w", id, err)
	}
	return sh, nil
}

func (r *ShipmentRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]shipments.Shipment, error) {
	if len(ids) == 0 {
		return map[int64]shipments.Shipment{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+shipmentColumns+` FROM shipments WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get shipments by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]shipments.Shipment, len(ids))
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		out[sh.ID] = *sh
	}
	return out, rows.Err()
}

func (r *ShipmentRepository) Create(ctx context.Context, sh shipments.Shipment) (*shipments.Shipment, error) {
	created, err := scanShipment(r.queryer().QueryRow(ctx, `
INSERT INTO shipments (order_id, carrier, tracking_number, cost, weight, length, width, height, label_url, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+shipmentColumns+`
`, sh.OrderID, sh.Carrier, sh.TrackingNumber, sh.Cost, sh.Weight, sh.Length, sh.Width, sh.Height, sh.LabelURL, sh.Status, sh.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}
	return created, nil
}

func (r *ShipmentRepository) Update(ctx context.Context, sh shipments.Shipment) (*shipments.Shipment, error) {
	updated, err := scanShipment(r.queryer().QueryRow(ctx, `
UPDATE shipments
   SET carrier = $2, tracking_number = $3, cost = $4, weight = $5, length = $6,
       width = $7, height = $8, label_url = $9, status = $10, updated_at = now()
 WHERE id = $1
RETURNING `+shipmentColumns+`
`, sh.ID, sh.Carrier, sh.TrackingNumber, sh.Cost, sh.Weight, sh.Length, sh.Width, sh.Height, sh.LabelURL, sh.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipments.ErrNotFound
		}
		return nil, fmt.Errorf("update shipment %d: %w", sh.ID, err)
	}
	return updated, nil
}

func (r *ShipmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shipments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("shipment exists %d: %w", id, err)
	}
	return exists, nil
}
