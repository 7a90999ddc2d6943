package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const userColumns = `id, username, password_hash, email, full_name, active, organization_id, role_id, created_at, updated_at`

func scanUser(row pgx.Row) (*users.User, error) {
	var user users.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.FullName,
		&user.Active,
		&user.OrganizationID,
		&user.RoleID,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, filters users.Filters) ([]users.User, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE ($1::bigint IS NULL OR organization_id = $1)
   AND ($2::bigint IS NULL OR role_id = $2)
   AND ($3::boolean IS NULL OR active = $3)
   AND ($4::text IS NULL OR username ILIKE '%' || $4 || '%' OR email ILIKE '%' || $4 || '%' OR full_name ILIKE '%' || $4 || '%')
 ORDER BY id
`, filters.OrganizationID, filters.RoleID, filters.Active, nilIfEmpty(filters.Query))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []users.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *user)
	}
	return out, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*users.User, error) {
	user, err := scanUser(r.queryer().QueryRow(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]users.User, error) {
	if len(ids) == 0 {
		return map[int64]users.User{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]users.User, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[user.ID] = *user
	}
	return out, rows.Err()
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	user, err := scanUser(r.queryer().QueryRow(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE username = $1
`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user users.User) (*users.User, error) {
	created, err := scanUser(r.queryer().QueryRow(ctx, `
INSERT INTO users (username, password_hash, email, full_name, active, organization_id, role_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+userColumns+`
`, user.Username, user.PasswordHash, user.Email, user.FullName, user.Active, user.OrganizationID, user.RoleID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) Update(ctx context.Context, user users.User) (*users.User, error) {
	updated, err := scanUser(r.queryer().QueryRow(ctx, `
UPDATE users
   SET username = $2, password_hash = $3, email = $4, full_name = $5, active = $6,
       organization_id = $7, role_id = $8, updated_at = now()
 WHERE id = $1
RETURNING `+userColumns+`
`, user.ID, user.Username, user.PasswordHash, user.Email, user.FullName, user.Active, user.OrganizationID, user.RoleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return updated, nil
}

func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists %d: %w", id, err)
	}
	return exists, nil
}
