// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio_backend/internal/feature/trades/domain/entity"
	"portfolio_backend/internal/feature/trades/usecase"
)

// TradeStore is the repository being decorated.
type TradeStore interface {
	usecase.TradeRepository
	Insert(ctx context.Context, trades ...entity.Trade) error
}

// CachingTradeRepository decorates a TradeStore with a read-through Redis cache.
// Cache failures never fail a query.
type CachingTradeRepository struct {
	inner     TradeStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ TradeStore = (*CachingTradeRepository)(nil)

// NewCachingTradeRepository decorates a TradeStore with Redis caching.
// If ttl is 0, it defaults to 30 seconds. If namespace is empty, it uses "trades".
// A nil rdb disables caching.
func NewCachingTradeRepository(rdb *redis.Client, ttl time.Duration, inner TradeStore, namespace string) *CachingTradeRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if namespace == "" {
		namespace = "trades"
	}
	return &CachingTradeRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Query checks the cache first then falls back to the inner store.
func (c *CachingTradeRepository) Query(ctx context.Context, p usecase.Predicate) ([]entity.Trade, error) {
	if c.rdb == nil {
		return c.inner.Query(ctx, p)
	}

	key := c.cacheKey(p)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Trade
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// corrupted
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != nil && err != redis.Nil {
		zap.L().Warn("trade cache read failed", zap.String("key", key), zap.Error(err))
	}

	out, err := c.inner.Query(ctx, p)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			zap.L().Warn("trade cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// Insert writes through to the inner store and drops cached queries of the affected owners.
func (c *CachingTradeRepository) Insert(ctx context.Context, trades ...entity.Trade) error {
	if err := c.inner.Insert(ctx, trades...); err != nil {
		return err
	}
	if c.rdb == nil || len(trades) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	for _, t := range trades {
		if _, ok := seen[t.Owner]; ok {
			continue
		}
		seen[t.Owner] = struct{}{}
		// best effort; stale entries expire with the TTL
		_ = c.deleteByPattern(ctx, c.ownerPrefix(t.Owner)+"*")
	}
	return nil
}

// cacheKey is <ns>:<owner>:<sha256 of the predicate>.
func (c *CachingTradeRepository) cacheKey(p usecase.Predicate) string {
	sum := sha256.Sum256([]byte(p.Key()))
	return c.ownerPrefix(p.Owner) + hex.EncodeToString(sum[:])
}

func (c *CachingTradeRepository) ownerPrefix(owner string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(owner))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingTradeRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys and glob patterns.
func safe(s string) string {
	return strings.NewReplacer(" ", "_", ":", "_", "*", "_", "?", "_", "[", "_", "]", "_").Replace(s)
}
