package main

import (
	"fmt"

	"github.com/google/uuid"

	"portfolio_backend/internal/feature/trades/domain/entity"
)

func toTrades(rows []seedTrade) ([]entity.Trade, error) {
	out := make([]entity.Trade, 0, len(rows))
	for i, r := range rows {
		id := uuid.Nil
		if r.OrderID != "" {
			parsed, err := uuid.Parse(r.OrderID)
			if err != nil {
				return nil, fmt.Errorf("row %d: order_id: %w", i, err)
			}
			id = parsed
		}
		t := entity.Trade{
			OrderID:       id,
			Owner:         r.Owner,
			Ticker:        r.Ticker,
			DollarAmount:  r.DollarAmount,
			RealisedPnL:   r.RealisedPnL,
			UnrealisedPnL: r.UnrealisedPnL,
			OpenPrice:     r.OpenPrice,
			ClosePrice:    r.ClosePrice,
			CreatedAt:     r.CreatedAt.UTC(),
			ClosedAt:      r.ClosedAt,
			IsActive:      r.IsActive,
			OrderType:     r.OrderType,
		}
		if t.Owner == "" {
			return nil, fmt.Errorf("row %d: owner is required", i)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}
