// Package router はginエンジンとルートテーブルを組み立てます。
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "portfolio_backend/internal/feature/auth/transport/handler"
	"portfolio_backend/internal/feature/auth/transport/middleware"
	metricshandler "portfolio_backend/internal/feature/metrics/transport/handler"
	tradeshandler "portfolio_backend/internal/feature/trades/transport/handler"
	watchlisthandler "portfolio_backend/internal/feature/watchlist/transport/handler"
	"portfolio_backend/internal/platform/http/handler"
	jwtmw "portfolio_backend/internal/platform/jwt"
	"portfolio_backend/internal/platform/metrics"
)

// Deps is everything the route table needs.
type Deps struct {
	Auth      *authhandler.AuthHandler
	Trades    *tradeshandler.TradesHandler
	Metrics   *metricshandler.MetricsHandler
	Watchlist *watchlisthandler.WatchlistHandler

	Gate         middleware.Admitter
	JWTSecret    string
	APIKeyHeader string
	CORSOrigins  []string
	ReadyChecks  map[string]handler.Check
	Prometheus   *metrics.Metrics
}

func corsConfig(origins []string, apiKeyHeader string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", apiKeyHeader)
	if len(origins) == 0 || len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(d.CORSOrigins, d.APIKeyHeader)))
	if d.Prometheus != nil {
		r.Use(d.Prometheus.Middleware())
	}
	// すべてのリクエストはゲートを通ります。公開パスはゲート側で除外します。
	r.Use(middleware.APIKeyGate(d.Gate))

	// 認証不要
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(d.ReadyChecks))
	if d.Prometheus != nil {
		r.GET("/metrics", gin.WrapH(d.Prometheus.Handler()))
	}
	r.POST("/signup", d.Auth.Signup)
	r.POST("/login", d.Auth.Login)

	// APIキーの発行はJWTで認証
	r.POST("/keys", jwtmw.AuthRequired(d.JWTSecret), d.Auth.IssueKey)

	portfolio := r.Group("/portfolio", middleware.RequirePrincipal())
	{
		portfolio.GET("/balance", d.Trades.Balance)
		portfolio.POST("/trades", d.Trades.Trades)

		portfolio.POST("/profits/:interval", d.Metrics.Profits)
		portfolio.POST("/metrics/:metric", d.Metrics.Metric)
		portfolio.POST("/win-rate", d.Metrics.WinRate)
		portfolio.POST("/volume", d.Metrics.Volume)
		portfolio.POST("/pnl", d.Metrics.PnL)
		portfolio.POST("/allocation", d.Metrics.Allocation)

		portfolio.GET("/watchlist", d.Watchlist.List)
		portfolio.POST("/watchlist", d.Watchlist.Add)
		portfolio.DELETE("/watchlist/:ticker", d.Watchlist.Remove)
	}

	return r
}
