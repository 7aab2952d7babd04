package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/app/router"
	authadapters "portfolio_backend/internal/feature/auth/adapters"
	authentity "portfolio_backend/internal/feature/auth/domain/entity"
	authhandler "portfolio_backend/internal/feature/auth/transport/handler"
	authusecase "portfolio_backend/internal/feature/auth/usecase"
	metricshandler "portfolio_backend/internal/feature/metrics/transport/handler"
	metricsusecase "portfolio_backend/internal/feature/metrics/usecase"
	tradesadapters "portfolio_backend/internal/feature/trades/adapters"
	tradeshandler "portfolio_backend/internal/feature/trades/transport/handler"
	tradesusecase "portfolio_backend/internal/feature/trades/usecase"
	watchlistadapters "portfolio_backend/internal/feature/watchlist/adapters"
	watchlistentity "portfolio_backend/internal/feature/watchlist/domain/entity"
	watchlisthandler "portfolio_backend/internal/feature/watchlist/transport/handler"
	watchlistusecase "portfolio_backend/internal/feature/watchlist/usecase"
	"portfolio_backend/internal/platform/cache"
	"portfolio_backend/internal/platform/config"
	cronrunner "portfolio_backend/internal/platform/cron"
	platformdb "portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/platform/http/handler"
	jwtmw "portfolio_backend/internal/platform/jwt"
	"portfolio_backend/internal/platform/logger"
	"portfolio_backend/internal/platform/metrics"
	platformredis "portfolio_backend/internal/platform/redis"
)

func main() {
	// .env はローカル開発用。存在しなくても問題ありません。
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.Open(cfg.DB, &authentity.User{}, &tradesadapters.TradeModel{}, &watchlistentity.Entry{})
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		zl.Warn("redis unavailable, running with in-memory session cache and no trade cache", zap.Error(err))
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				zl.Error("failed to close redis client", zap.Error(err))
			}
		}()
	}

	if cfg.Auth.JWTSecret == "" {
		zl.Warn("JWT_SECRET is not set; /keys will answer 500 until it is")
	}

	prom := metrics.New()

	// Repository
	users := authadapters.NewUserGorm(db)
	tradeRepo := cache.NewCachingTradeRepository(rdb, cfg.Redis.TradeCacheTTL, tradesadapters.NewTradeRepository(db), "trades")
	watchRepo := watchlistadapters.NewWatchlistRepository(db)
	sessions, memSessions := di.NewSessionCache(rdb)

	// Usecase
	verifier := authusecase.NewArgon2Verifier(di.Argon2Params(cfg.Auth))
	gate, err := di.NewGate(cfg, users, sessions, verifier, prom, zl)
	if err != nil {
		zl.Fatal("invalid gate configuration", zap.Error(err))
	}
	authUC := authusecase.NewAuthUsecase(users, jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry), verifier)
	tradesUC := tradesusecase.NewTradesUsecase(tradeRepo)
	metricsUC := metricsusecase.NewMetricsUsecase(tradesUC, cfg.Metrics.RiskFreeRate)
	watchUC := watchlistusecase.NewWatchlistUsecase(watchRepo)

	readyChecks := map[string]handler.Check{
		"db":    func(context.Context) error { return platformdb.Ping(db) },
		"redis": nil,
	}
	if rdb != nil {
		readyChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	engine := router.NewRouter(router.Deps{
		Auth:         authhandler.NewAuthHandler(authUC, cfg.Auth.APIKeyHeader),
		Trades:       tradeshandler.NewTradesHandler(tradesUC),
		Metrics:      metricshandler.NewMetricsHandler(metricsUC),
		Watchlist:    watchlisthandler.NewWatchlistHandler(watchUC),
		Gate:         gate,
		JWTSecret:    cfg.Auth.JWTSecret,
		APIKeyHeader: cfg.Auth.APIKeyHeader,
		CORSOrigins:  cfg.App.CORSOrigins,
		ReadyChecks:  readyChecks,
		Prometheus:   prom,
	})

	// Housekeeping
	runner := cronrunner.New(zl, ctx)
	if memSessions != nil {
		if _, err := runner.Add("session_sweep", "@every 1m", func(ctx context.Context) {
			if n := memSessions.Sweep(ctx); n > 0 {
				zl.Debug("expired sessions swept", zap.Int("count", n))
			}
		}); err != nil {
			zl.Fatal("failed to schedule session sweep", zap.Error(err))
		}
	}
	runner.Start()
	defer runner.Stop()

	srv := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("http server listening", zap.String("addr", cfg.App.HTTPAddr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		zl.Info("shutdown requested")
	case err := <-errCh:
		zl.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
