// Package db はPostgreSQLへのGORM接続とマイグレーションを提供します。
package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"portfolio_backend/internal/platform/config"
)

// retryInterval は接続リトライの間隔です。
var retryInterval = 3 * time.Second

// Opener opens a gorm connection for dsn.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はPostgreSQL用のkey=value形式のDSNを組み立てます。
func BuildDSN(cfg config.DBConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts := []string{
		"host=" + quote(cfg.Host),
		"port=" + quote(cfg.Port),
		"user=" + quote(cfg.User),
		"password=" + quote(cfg.Password),
		"dbname=" + quote(cfg.Name),
		"sslmode=" + sslmode,
		"TimeZone=UTC",
	}
	return strings.Join(parts, " ")
}

// quote escapes a libpq keyword value when it needs quoting.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// PostgresOpener opens connections with the postgres driver.
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

// ConnectWithRetry は timeout に達するまで retryInterval ごとに接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempt, err)
		}
		zap.L().Warn("db connect failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(retryInterval)
	}
}

// Open connects to PostgreSQL and runs migrations when enabled.
func Open(cfg config.DBConfig, models ...any) (*gorm.DB, error) {
	timeout := cfg.ConnTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, PostgresOpener)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		zap.L().Info("migrations applied", zap.Int("models", len(models)))
	}
	return db, nil
}

// Ping checks that the underlying connection pool is reachable.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
