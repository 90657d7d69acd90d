// Package redis provides Redis-based adapters for the dispatch system.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xdrive-logistics/dispatch/internal/domain/auth"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

// SessionStore persists actor sessions in Redis with TTL derived from
// each session's expiry. Sessions are the only mutable state the system
// keeps outside the job store.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a session store with the default key prefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, prefix: "dispatch:session:"}
}

// NewSessionStoreWithPrefix creates a session store with a custom key
// prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

// Save stores the session with a TTL running to its expiry. Saving an
// already expired session is rejected.
func (s *SessionStore) Save(ctx context.Context, sess auth.Session) error {
	if sess.ID == "" {
		return apperrors.Validation("session ID cannot be empty")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return apperrors.Validation("session is already expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "redis set")
	}
	return nil
}

// Get retrieves a session. Expired or missing sessions yield NotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (auth.Session, error) {
	if id == "" {
		return auth.Session{}, apperrors.NotFound("session not found")
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.Session{}, apperrors.NotFound("session not found")
		}
		return auth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "redis get")
	}

	var sess auth.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return auth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	// Redis TTL should have evicted it already; check anyway.
	if sess.Expired(time.Now()) {
		if err := s.Delete(ctx, id); err != nil {
			return auth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return auth.Session{}, apperrors.NotFound("session not found")
	}

	return sess, nil
}

// Renew extends the session's expiry and TTL.
func (s *SessionStore) Renew(ctx context.Context, id string, ttl time.Duration) (auth.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return auth.Session{}, err
	}
	sess.ExpiresAt = time.Now().Add(ttl)
	if err := s.Save(ctx, sess); err != nil {
		return auth.Session{}, err
	}
	return sess, nil
}

// Delete removes a session. Deleting a missing session is a no-op.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "redis del")
	}
	return nil
}
