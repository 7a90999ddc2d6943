package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// DefaultSessionTTL is the fixed browser-session lifetime.
const DefaultSessionTTL = 24 * time.Hour

// Session is a server-side login session. Only the SHA-256 digest of the
// cookie token is stored; the plaintext token exists solely in the Set-Cookie
// response.
type Session struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

var (
	ErrInvalidSession  = errors.New("invalid session")
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore is implemented by the storage engines.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (Session, error)
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

type SessionManager struct {
	store SessionStore
	ttl   time.Duration
}

func NewSessionManager(store SessionStore, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{store: store, ttl: ttl}
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session for the user and returns the plaintext token for
// the cookie.
func (m *SessionManager) Issue(ctx context.Context, userID int64) (string, Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return "", Session{}, err
	}

	session, err := m.store.CreateSession(ctx, Session{
		UserID:    userID,
		TokenHash: HashSessionToken(token),
		ExpiresAt: time.Now().Add(m.ttl),
	})
	if err != nil {
		return "", Session{}, fmt.Errorf("create session: %w", err)
	}
	return token, session, nil
}

// Validate resolves a cookie token to its session. Expired sessions are
// removed on sight and reported as invalid.
func (m *SessionManager) Validate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrInvalidSession
	}

	hash := HashSessionToken(token)
	session, err := m.store.GetSessionByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Session{}, ErrInvalidSession
		}
		return Session{}, fmt.Errorf("lookup session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		_ = m.store.DeleteSessionByTokenHash(ctx, hash)
		return Session{}, ErrInvalidSession
	}
	return session, nil
}

// Revoke deletes the session for a token. Unknown tokens are not an error so
// logout stays idempotent.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.DeleteSessionByTokenHash(ctx, HashSessionToken(token)); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions past their expiry and returns the count.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredSessions(ctx, time.Now())
}

func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HashSessionToken digests a cookie token for storage and lookup.
func HashSessionToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.URLEncoding.EncodeToString(hash[:])
}
