package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/domain/activity"
)

var _ activity.Repository = (*ActivityRepository)(nil)

type ActivityRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *ActivityRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const activityColumns = `id, user_id, action, entity_type, entity_id, organization_id, details, occurred_at`

func scanActivity(row pgx.Row) (*activity.Log, error) {
	var entry activity.Log
	var details []byte
	if err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Action,
		&entry.EntityType,
		&entry.EntityID,
		&entry.OrganizationID,
		&details,
		&entry.OccurredAt,
	); err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, fmt.Errorf("decode activity details: %w", err)
		}
	}
	return &entry, nil
}

func (r *ActivityRepository) List(ctx context.Context, filters activity.Filters) ([]activity.Log, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+activityColumns+`
  FROM activity_logs
 WHERE ($1::bigint IS NULL OR organization_id = $1)
   AND ($2::bigint IS NULL OR user_id = $2)
   AND ($3::text IS NULL OR entity_type = $3)
   AND ($4::text IS NULL OR entity_id = $4)
   AND ($5::text IS NULL OR action = $5)
 ORDER BY id DESC
`, filters.OrganizationID, filters.UserID, nilIfEmpty(filters.EntityType), nilIfEmpty(filters.EntityID), nilIfEmpty(filters.Action))
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()

	var out []activity.Log
	for rows.Next() {
		entry, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*activity.Log, error) {
	entry, err := scanActivity(r.queryer().QueryRow(ctx, `
SELECT `+activityColumns+` FROM activity_logs WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, activity.ErrNotFound
		}
		return nil, fmt.Errorf("get activity log %d: %w", id, err)
	}
	return entry, nil
}

func (r *ActivityRepository) Create(ctx context.Context, entry activity.Log) (*activity.Log, error) {
	var details []byte
	if entry.Details != nil {
		encoded, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, fmt.Errorf("encode activity details: %w", err)
		}
		details = encoded
	}

	created, err := scanActivity(r.queryer().QueryRow(ctx, `
INSERT INTO activity_logs (user_id, action, entity_type, entity_id, organization_id, details, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::timestamptz, now()))
RETURNING `+activityColumns+`
`, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, entry.OrganizationID, details, nullableTime(entry.OccurredAt)))
	if err != nil {
		return nil, fmt.Errorf("create activity log: %w", err)
	}
	return created, nil
}
