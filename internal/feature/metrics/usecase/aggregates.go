package usecase

import (
	"errors"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/trades/domain/entity"
)

// ErrUndefinedStatistic is returned when a statistic has no defined value for the input.
var ErrUndefinedStatistic = errors.New("statistic is undefined for an empty trade set")

// PnL は実現損益と含み損益の合計です。
type PnL struct {
	Realised   float64
	Unrealised float64
}

func TotalPnL(trades []entity.Trade) PnL {
	realised, unrealised := decimal.Zero, decimal.Zero
	for _, t := range trades {
		realised = realised.Add(money(t.RealisedPnL))
		unrealised = unrealised.Add(money(t.UnrealisedPnL))
	}
	return PnL{Realised: toFloat(realised), Unrealised: toFloat(unrealised)}
}

// Volume は取引金額の合計です。
func Volume(trades []entity.Trade) float64 {
	sum := decimal.Zero
	for _, t := range trades {
		sum = sum.Add(dec(t.DollarAmount))
	}
	return toFloat(sum)
}

// WinRate is the percentage of trades with a positive realised PnL, to 2 dp.
// An empty input gives 0.
func WinRate(trades []entity.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.RealisedPnL != nil && *t.RealisedPnL > 0 {
			wins++
		}
	}
	return percent(wins, len(trades))
}

// AssetAllocation returns each ticker's share of the trade count in percent, to 2 dp.
func AssetAllocation(trades []entity.Trade) (map[string]float64, error) {
	if len(trades) == 0 {
		return nil, ErrUndefinedStatistic
	}
	counts := make(map[string]int)
	for _, t := range trades {
		counts[t.Ticker]++
	}
	out := make(map[string]float64, len(counts))
	for ticker, n := range counts {
		out[ticker] = percent(n, len(trades))
	}
	return out, nil
}

func percent(part, total int) float64 {
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2).
		InexactFloat64()
}
