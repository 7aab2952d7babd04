// Package usecase はトレード集合から損益の集計とリスク指標を計算します。
package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/trades/domain/entity"
)

// Interval はバケットの粒度です。
type Interval string

const (
	Daily   Interval = "d"
	Monthly Interval = "m"
	Yearly  Interval = "y"
)

var layouts = map[Interval]string{
	Daily:   "2006-01-02",
	Monthly: "2006-01",
	Yearly:  "2006",
}

// ParseInterval accepts "d", "m" or "y".
func ParseInterval(s string) (Interval, error) {
	iv := Interval(s)
	if _, ok := layouts[iv]; !ok {
		return "", fmt.Errorf("unknown interval %q", s)
	}
	return iv, nil
}

// Bucket is the realised profit of one period.
type Bucket struct {
	Key    string
	Profit float64
}

// Profits sums realised PnL per period of ClosedAt (UTC), ordered by period.
// Trades without a close time are skipped.
func Profits(trades []entity.Trade, iv Interval) []Bucket {
	layout, ok := layouts[iv]
	if !ok {
		return nil
	}

	sums := make(map[string]decimal.Decimal)
	for _, t := range trades {
		if t.ClosedAt == nil {
			continue
		}
		key := t.ClosedAt.UTC().Format(layout)
		sums[key] = sums[key].Add(money(t.RealisedPnL))
	}

	out := make([]Bucket, 0, len(sums))
	for k, v := range sums {
		out = append(out, Bucket{Key: k, Profit: toFloat(v)})
	}
	// fixed-width keys sort chronologically
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func DailyProfits(trades []entity.Trade) []Bucket   { return Profits(trades, Daily) }
func MonthlyProfits(trades []entity.Trade) []Bucket { return Profits(trades, Monthly) }
func YearlyProfits(trades []entity.Trade) []Bucket  { return Profits(trades, Yearly) }

// ParseBucketKey returns the UTC start of the period named by key.
func ParseBucketKey(iv Interval, key string) (time.Time, error) {
	layout, ok := layouts[iv]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown interval %q", iv)
	}
	return time.ParseInLocation(layout, key, time.UTC)
}

// Returns extracts the profit series from buckets.
func Returns(buckets []Bucket) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Profit
	}
	return out
}

func money(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return dec(*v)
}
