package dto

import (
	"time"

	"github.com/google/uuid"

	"portfolio_backend/internal/feature/trades/domain/entity"
)

// TradeRes はトレード1件のレスポンス表現です。
type TradeRes struct {
	OrderID       uuid.UUID        `json:"order_id"`
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

type BalanceRes struct {
	Balance *float64 `json:"balance"`
}

// FromTrades converts entities to responses, never returning nil.
func FromTrades(ts []entity.Trade) []TradeRes {
	out := make([]TradeRes, 0, len(ts))
	for _, t := range ts {
		out = append(out, TradeRes{
			OrderID:       t.OrderID,
			Ticker:        t.Ticker,
			DollarAmount:  t.DollarAmount,
			RealisedPnL:   t.RealisedPnL,
			UnrealisedPnL: t.UnrealisedPnL,
			OpenPrice:     t.OpenPrice,
			ClosePrice:    t.ClosePrice,
			CreatedAt:     t.CreatedAt,
			ClosedAt:      t.ClosedAt,
			IsActive:      t.IsActive,
			OrderType:     t.OrderType,
		})
	}
	return out
}
