package memory

import (
	"context"
	"time"

	"github.com/warebase/server/internal/auth"
)

var _ auth.SessionStore = (*sessionRepo)(nil)

type sessionRepo struct {
	s *store
}

func (r *sessionRepo) CreateSession(ctx context.Context, session auth.Session) (auth.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session.ID = r.s.nextID("sessions")
	session.CreatedAt = now()
	r.s.sessions[session.TokenHash] = session
	return session, nil
}

func (r *sessionRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (auth.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	session, ok := r.s.sessions[tokenHash]
	if !ok {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return session, nil
}

func (r *sessionRepo) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, tokenHash)
	return nil
}

func (r *sessionRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed int64
	for hash, session := range r.s.sessions {
		if session.ExpiresAt.Before(before) {
			delete(r.s.sessions, hash)
			removed++
		}
	}
	return removed, nil
}
