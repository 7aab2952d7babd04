package usecase

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultRiskFree is used when no risk-free rate (or zero) is given.
const DefaultRiskFree = 4.0

// Std は母標準偏差（n で割る）を小数第3位に丸めて返します。空なら 0 です。
func Std(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := meanOf(returns)
	devs := make([]decimal.Decimal, len(returns))
	for i, r := range returns {
		devs[i] = dec(r).Sub(mean)
	}
	return rootMeanSquare(devs, len(returns))
}

// DownsideStd only counts periods below the mean, but still divides by n.
func DownsideStd(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := meanOf(returns)
	devs := make([]decimal.Decimal, 0, len(returns))
	for _, r := range returns {
		if d := dec(r).Sub(mean); d.IsNegative() {
			devs = append(devs, d)
		}
	}
	return rootMeanSquare(devs, len(returns))
}

// Sharpe = (sum - rf*n) / Std. 0 when Std is 0.
func Sharpe(returns []float64, riskFree float64) float64 {
	s := Std(returns)
	if s == 0 {
		return 0
	}
	rf := riskFreeOrDefault(riskFree)
	excess := sum(returns).Sub(dec(rf).Mul(decimal.NewFromInt(int64(len(returns)))))
	return finite(excess.InexactFloat64() / s)
}

// Sortino = (sum / (rf*n)) / DownsideStd. 0 when either denominator is 0.
func Sortino(returns []float64, riskFree float64) float64 {
	rf := riskFreeOrDefault(riskFree)
	target := rf * float64(len(returns))
	ds := DownsideStd(returns)
	if target == 0 || ds == 0 {
		return 0
	}
	return finite(sum(returns).InexactFloat64() / target / ds)
}

func riskFreeOrDefault(rf float64) float64 {
	if rf == 0 || math.IsNaN(rf) || math.IsInf(rf, 0) {
		return DefaultRiskFree
	}
	return rf
}

func sum(xs []float64) decimal.Decimal {
	s := decimal.Zero
	for _, x := range xs {
		s = s.Add(dec(x))
	}
	return s
}

func meanOf(xs []float64) decimal.Decimal {
	return sum(xs).Div(decimal.NewFromInt(int64(len(xs))))
}

// rootMeanSquare returns sqrt(sum(d^2)/n) to 3 dp. Deviations are scaled by
// the largest magnitude first so the squares stay inside float64 range.
func rootMeanSquare(devs []decimal.Decimal, n int) float64 {
	scale := decimal.Zero
	for _, d := range devs {
		if a := d.Abs(); a.GreaterThan(scale) {
			scale = a
		}
	}
	if scale.IsZero() {
		return 0
	}
	sq := decimal.Zero
	for _, d := range devs {
		u := d.Div(scale)
		sq = sq.Add(u.Mul(u))
	}
	unit := math.Sqrt(sq.Div(decimal.NewFromInt(int64(n))).InexactFloat64())
	return round(dec(unit).Mul(scale).InexactFloat64(), 3)
}

func round(v float64, places int32) float64 {
	v = finite(v)
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// dec converts to decimal, saturating NaN and ±Inf to 0 since decimal cannot hold them.
func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(finite(v))
}

// finite saturates NaN and ±Inf to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// toFloat saturates sums beyond float64 range to 0.
func toFloat(d decimal.Decimal) float64 {
	return finite(d.InexactFloat64())
}
