package usecase

import (
	"context"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/trades/domain/entity"
)

// Metric names accepted by Metric.
const (
	MetricSharpe  = "sharpe"
	MetricSortino = "sortino"
	MetricStd     = "std"
)

// TradeFinder は所有者のトレードをフィルタ付きで取得します。
type TradeFinder interface {
	Find(ctx context.Context, owner string, f entity.TradeFilter) ([]entity.Trade, error)
}

type MetricsUsecase struct {
	trades   TradeFinder
	riskFree float64
}

// NewMetricsUsecase uses riskFree whenever a request omits its own rate.
func NewMetricsUsecase(trades TradeFinder, riskFree float64) *MetricsUsecase {
	return &MetricsUsecase{trades: trades, riskFree: riskFree}
}

func (u *MetricsUsecase) Profits(ctx context.Context, owner string, iv Interval, f entity.TradeFilter) ([]Bucket, error) {
	trades, err := u.trades.Find(ctx, owner, f)
	if err != nil {
		return nil, err
	}
	return Profits(trades, iv), nil
}

// Metric computes a ratio statistic over the per-interval profit series.
// An unknown name is a NotFound error.
func (u *MetricsUsecase) Metric(ctx context.Context, owner, name string, iv Interval, riskFree *float64, f entity.TradeFilter) (float64, error) {
	var stat func([]float64) float64
	rf := u.riskFree
	if riskFree != nil {
		rf = *riskFree
	}
	switch name {
	case MetricSharpe:
		stat = func(r []float64) float64 { return Sharpe(r, rf) }
	case MetricSortino:
		stat = func(r []float64) float64 { return Sortino(r, rf) }
	case MetricStd:
		stat = Std
	default:
		return 0, api.NotFound("metric")
	}

	buckets, err := u.Profits(ctx, owner, iv, f)
	if err != nil {
		return 0, err
	}
	return stat(Returns(buckets)), nil
}

func (u *MetricsUsecase) WinRate(ctx context.Context, owner string, f entity.TradeFilter) (float64, error) {
	trades, err := u.trades.Find(ctx, owner, f)
	if err != nil {
		return 0, err
	}
	return WinRate(trades), nil
}

func (u *MetricsUsecase) Volume(ctx context.Context, owner string, f entity.TradeFilter) (float64, error) {
	trades, err := u.trades.Find(ctx, owner, f)
	if err != nil {
		return 0, err
	}
	return Volume(trades), nil
}

func (u *MetricsUsecase) PnL(ctx context.Context, owner string, f entity.TradeFilter) (PnL, error) {
	trades, err := u.trades.Find(ctx, owner, f)
	if err != nil {
		return PnL{}, err
	}
	return TotalPnL(trades), nil
}

func (u *MetricsUsecase) Allocation(ctx context.Context, owner string, f entity.TradeFilter) (map[string]float64, error) {
	trades, err := u.trades.Find(ctx, owner, f)
	if err != nil {
		return nil, err
	}
	return AssetAllocation(trades)
}
