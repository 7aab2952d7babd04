// Package session はAPIキー検証結果のセッションキャッシュ実装を提供します。
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/auth/domain/entity"
	"portfolio_backend/internal/feature/auth/usecase"
)

var _ usecase.SessionCache = (*SessionRedis)(nil)

// SessionRedis implements usecase.SessionCache using Redis.
// Entries are keyed by a digest of the raw key; the raw key is never stored.
type SessionRedis struct {
	client redis.Cmdable
	prefix string
}

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client redis.Cmdable, prefix string) *SessionRedis {
	if prefix == "" {
		prefix = "session"
	}
	return &SessionRedis{
		client: client,
		prefix: prefix,
	}
}

// sessionKey returns the Redis key for a raw API key.
func (r *SessionRedis) sessionKey(rawKey string) string {
	return fmt.Sprintf("%s:%s", r.prefix, digest(rawKey))
}

// Get returns the cached entry, or nil when absent.
func (r *SessionRedis) Get(ctx context.Context, rawKey string) (*entity.CacheEntry, error) {
	data, err := r.client.Get(ctx, r.sessionKey(rawKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entry entity.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &entry, nil
}

// Put stores entry with the given TTL.
func (r *SessionRedis) Put(ctx context.Context, rawKey string, entry *entity.CacheEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid session ttl %v", ttl)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(rawKey), data, ttl).Err()
}

// Delete removes the entry. Deleting a missing entry is not an error.
func (r *SessionRedis) Delete(ctx context.Context, rawKey string) error {
	return r.client.Del(ctx, r.sessionKey(rawKey)).Err()
}

func digest(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}
