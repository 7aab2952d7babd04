// Command seed loads trade records from a JSON file into the trade store.
//
//	seed -file trades.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"portfolio_backend/internal/feature/trades/adapters"
	"portfolio_backend/internal/feature/trades/domain/entity"
	"portfolio_backend/internal/platform/cache"
	"portfolio_backend/internal/platform/config"
	platformdb "portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/platform/logger"
	platformredis "portfolio_backend/internal/platform/redis"
)

func main() {
	file := flag.String("file", "", "path to a JSON array of trades")
	flag.Parse()
	if *file == "" {
		log.Fatal("-file is required")
	}

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

	trades, err := readTrades(*file)
	if err != nil {
		zl.Fatal("failed to read trades", zap.String("file", *file), zap.Error(err))
	}

	db, err := platformdb.Open(cfg.DB, &adapters.TradeModel{})
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// 挿入時にオーナーごとのキャッシュを無効化するため、Redis があればデコレータ経由で書き込みます。
	rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		zl.Warn("redis unavailable, cached queries expire with their TTL", zap.Error(err))
		rdb = nil
	} else {
		defer func() { _ = rdb.Close() }()
	}
	repo := cache.NewCachingTradeRepository(rdb, cfg.Redis.TradeCacheTTL, adapters.NewTradeRepository(db), "trades")

	if err := repo.Insert(ctx, trades...); err != nil {
		zl.Fatal("seed failed", zap.Error(err))
	}
	zl.Info("seed ok", zap.Int("trades", len(trades)))
}

// seedTrade is the file format; field names follow the HTTP API.
type seedTrade struct {
	OrderID       string           `json:"order_id"`
	Owner         string           `json:"owner"`
	Ticker        string           `json:"ticker"`
	DollarAmount  float64          `json:"dollar_amount"`
	RealisedPnL   *float64         `json:"realised_pnl"`
	UnrealisedPnL *float64         `json:"unrealised_pnl"`
	OpenPrice     *float64         `json:"open_price"`
	ClosePrice    *float64         `json:"close_price"`
	CreatedAt     time.Time        `json:"created_at"`
	ClosedAt      *time.Time       `json:"closed_at"`
	IsActive      bool             `json:"is_active"`
	OrderType     entity.OrderType `json:"order_type"`
}

func readTrades(path string) ([]entity.Trade, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []seedTrade
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	return toTrades(rows)
}
