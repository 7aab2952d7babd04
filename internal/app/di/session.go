// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/auth/usecase"
	"portfolio_backend/internal/platform/session"
)

// NewSessionCache creates a SessionCache implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to process memory and also returns the
// in-memory store so the caller can schedule its sweep.
func NewSessionCache(rdb *redis.Client) (usecase.SessionCache, *session.SessionMemory) {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session"), nil
	}
	mem := session.NewSessionMemory()
	return mem, mem
}
