// Package redis はgo-redisクライアントを設定から生成します。
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio_backend/internal/platform/config"
)

// ErrNotConfigured is returned when no Redis host is set.
var ErrNotConfigured = errors.New("redis is not configured")

// NewRedisClient connects and pings Redis. Callers fall back to in-process
// implementations when it returns an error.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := cfg.Addr()
	if addr == "" {
		return nil, ErrNotConfigured
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		zap.L().Error("redis connection failed", zap.String("address", addr), zap.Error(err))
		_ = rdb.Close()
		return nil, err
	}

	zap.L().Info("redis connection successful", zap.String("address", addr))
	return rdb, nil
}
