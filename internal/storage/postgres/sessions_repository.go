package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warebase/server/internal/auth"
)

var _ auth.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *SessionRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *SessionRepository) CreateSession(ctx context.Context, session auth.Session) (auth.Session, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO sessions (user_id, token_hash, expires_at)
VALUES ($1, $2, $3)
RETURNING id, user_id, token_hash, expires_at, created_at
`, session.UserID, session.TokenHash, session.ExpiresAt)

	var created auth.Session
	if err := row.Scan(&created.ID, &created.UserID, &created.TokenHash, &created.ExpiresAt, &created.CreatedAt); err != nil {
		return auth.Session{}, fmt.Errorf("create session: %w", err)
	}
	return created, nil
}

func (r *SessionRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (auth.Session, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, user_id, token_hash, expires_at, created_at
  FROM sessions
 WHERE token_hash = $1
`, tokenHash)

	var session auth.Session
	if err := row.Scan(&session.ID, &session.UserID, &session.TokenHash, &session.ExpiresAt, &session.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
