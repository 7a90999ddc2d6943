package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/domain/roles"
)

var _ roles.Repository = (*RoleRepository)(nil)

type RoleRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *RoleRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const roleColumns = `id, name, description, permissions, scope, created_at, updated_at`

func scanRole(row pgx.Row) (*roles.Role, error) {
	var role roles.Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.Permissions, &role.Scope, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context, filters roles.Filters) ([]roles.Role, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+roleColumns+`
  FROM roles
 WHERE ($1::text IS NULL OR scope = $1)
   AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
 ORDER BY id
`, nilIfEmpty(filters.Scope), nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []roles.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, *role)
	}
	return out, rows.Err()
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*roles.Role, error) {
	role, err := scanRole(r.queryer().QueryRow(ctx, `
SELECT `+roleColumns+`
  FROM roles
 WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, roles.ErrNotFound
		}
		return nil, fmt.Errorf("get role %d: %w", id, err)
	}
	return role, nil
}

func (r *RoleRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]roles.Role, error) {
	if len(ids) == 0 {
		return map[int64]roles.Role{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+roleColumns+`
  FROM roles
 WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get roles by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]roles.Role, len(ids))
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out[role.ID] = *role
	}
	return out, rows.Err()
}

func (r *RoleRepository) Create(ctx context.Context, role roles.Role) (*roles.Role, error) {
	created, err := scanRole(r.queryer().QueryRow(ctx, `
INSERT INTO roles (name, description, permissions, scope)
VALUES ($1, $2, $3, $4)
RETURNING `+roleColumns+`
`, role.Name, role.Description, role.Permissions, role.Scope))
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return created, nil
}

func (r *RoleRepository) Update(ctx context.Context, role roles.Role) (*roles.Role, error) {
	updated, err := scanRole(r.queryer().QueryRow(ctx, `
UPDATE roles
   SET name = $2, description = $3, permissions = $4, scope = $5, updated_at = now()
 WHERE id = $1
RETURNING `+roleColumns+`
`, role.ID, role.Name, role.Description, role.Permissions, role.Scope))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, roles.ErrNotFound
		}
		return nil, fmt.Errorf("update role %d: %w", role.ID, err)
	}
	return updated, nil
}

func (r *RoleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("role exists %d: %w", id, err)
	}
	return exists, nil
}
