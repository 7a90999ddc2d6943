package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/domain/organizations"
)

var _ organizations.Repository = (*OrganizationRepository)(nil)

type OrganizationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *OrganizationRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const organizationColumns = `id, name, description, active, parent_id, created_at, updated_at`

func scanOrganization(row pgx.Row) (*organizations.Organization, error) {
	var org organizations.Organization
	if err := row.Scan(&org.ID, &org.Name, &org.Description, &org.Active, &org.ParentID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) List(ctx context.Context, filters organizations.Filters) ([]organizations.Organization, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+organizationColumns+`
  FROM organizations
 WHERE ($1::bigint IS NULL OR parent_id = $1)
   AND ($2::boolean IS NULL OR active = $2)
   AND ($3::text IS NULL OR name ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
 ORDER BY id
`, filters.ParentID, filters.Active, nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var out []organizations.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out = append(out, *org)
	}
	return out, rows.Err()
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*organizations.Organization, error) {
	org, err := scanOrganization(r.queryer().QueryRow(ctx, `
SELECT `+organizationColumns+`
  FROM organizations
 WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organizations.ErrNotFound
		}
		return nil, fmt.Errorf("get organization %d: %w", id, err)
	}
	return org, nil
}

func (r *OrganizationRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]organizations.Organization, error) {
	if len(ids) == 0 {
		return map[int64]organizations.Organization{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+organizationColumns+`
  FROM organizations
 WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get organizations by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]organizations.Organization, len(ids))
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		out[org.ID] = *org
	}
	return out, rows.Err()
}

func (r *OrganizationRepository) Create(ctx context.Context, org organizations.Organization) (*organizations.Organization, error) {
	created, err := scanOrganization(r.queryer().QueryRow(ctx, `
INSERT INTO organizations (name, description, active, parent_id)
VALUES ($1, $2, $3, $4)
RETURNING `+organizationColumns+`
`, org.Name, org.Description, org.Active, org.ParentID))
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	return created, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, org organizations.Organization) (*organizations.Organization, error) {
	updated, err := scanOrganization(r.queryer().QueryRow(ctx, `
UPDATE organizations
   SET name = $2, description = $3, active = $4, parent_id = $5, updated_at = now()
 WHERE id = $1
RETURNING `+organizationColumns+`
`, org.ID, org.Name, org.Description, org.Active, org.ParentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organizations.ErrNotFound
		}
		return nil, fmt.Errorf("update organization %d: %w", org.ID, err)
	}
	return updated, nil
}

func (r *OrganizationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM organizations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("organization exists %d: %w", id, err)
	}
	return exists, nil
}
