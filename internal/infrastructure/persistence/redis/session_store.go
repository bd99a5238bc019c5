package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION STORE
// ══════════════════════════════════════════════════════════════════════════════

// ErrSessionNotFound is returned when the token is unknown or expired.
var ErrSessionNotFound = errors.New("session: token not found")

// SessionStore keeps opaque session tokens in Redis. A token maps to the
// owning user ID and expires after the configured TTL.
type SessionStore struct {
	cache *Cache
	ttl   time.Duration
}

// NewSessionStore creates a new SessionStore. ttl <= 0 falls back to
// TTLSession.
func NewSessionStore(cache *Cache, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = TTLSession
	}
	return &SessionStore{cache: cache, ttl: ttl}
}

// Create issues a new token for the user.
func (s *SessionStore) Create(ctx context.Context, userID shared.UserID) (string, error) {
	token := uuid.NewString()
	if err := s.cache.Set(ctx, PrefixSession+token, userID.Int64(), s.ttl); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// Resolve returns the user owning the token and slides its expiry.
func (s *SessionStore) Resolve(ctx context.Context, token string) (shared.UserID, error) {
	var id int64
	err := s.cache.Get(ctx, PrefixSession+token, &id)
	if errors.Is(err, ErrCacheMiss) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve session: %w", err)
	}

	// Sliding expiration: activity keeps the session alive.
	if err := s.cache.Expire(ctx, PrefixSession+token, s.ttl); err != nil {
		return 0, fmt.Errorf("failed to refresh session: %w", err)
	}
	return shared.UserID(id), nil
}

// Revoke invalidates the token.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, PrefixSession+token)
}
