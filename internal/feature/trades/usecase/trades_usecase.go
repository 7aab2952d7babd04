// Package usecase はトレード検索のユースケースを提供します。
package usecase

import (
	"context"
	"fmt"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/trades/domain/entity"
)

// TradeRepository はトレードの読み取り専用ストアです。
type TradeRepository interface {
	Query(ctx context.Context, p Predicate) ([]entity.Trade, error)
}

type TradesUsecase struct {
	trades TradeRepository
}

func NewTradesUsecase(trades TradeRepository) *TradesUsecase {
	return &TradesUsecase{trades: trades}
}

// Find returns the owner's trades matching the filter, oldest first.
func (u *TradesUsecase) Find(ctx context.Context, owner string, f entity.TradeFilter) ([]entity.Trade, error) {
	out, err := u.trades.Query(ctx, BuildPredicate(owner, f))
	if err != nil {
		return nil, api.Dependency(api.KindStorage, fmt.Errorf("query trades: %w", err))
	}
	return out, nil
}
