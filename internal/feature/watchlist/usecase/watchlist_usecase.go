// Package usecase implements the business logic for the watchlist.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/watchlist/domain"
	"portfolio_backend/internal/feature/watchlist/domain/entity"
)

// WatchlistRepository abstracts the persistence layer for watchlist entries.
type WatchlistRepository interface {
	List(ctx context.Context, owner string) ([]entity.Entry, error)
	Add(ctx context.Context, e *entity.Entry) error
	Remove(ctx context.Context, owner, ticker string) error
}

type WatchlistUsecase struct {
	repo WatchlistRepository
}

func NewWatchlistUsecase(r WatchlistRepository) *WatchlistUsecase {
	return &WatchlistUsecase{repo: r}
}

// normalizeTicker は前後の空白を除去し大文字に揃えます。
func normalizeTicker(t string) (string, error) {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" || len(t) > 32 {
		return "", domain.ErrInvalidTicker
	}
	return t, nil
}

func (u *WatchlistUsecase) List(ctx context.Context, owner string) ([]entity.Entry, error) {
	entries, err := u.repo.List(ctx, owner)
	if err != nil {
		return nil, api.Dependency(api.KindStorage, fmt.Errorf("list watchlist: %w", err))
	}
	return entries, nil
}

// Add returns ErrAlreadyWatched when the ticker is already present.
func (u *WatchlistUsecase) Add(ctx context.Context, owner, ticker string) (*entity.Entry, error) {
	t, err := normalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	e := &entity.Entry{Owner: owner, Ticker: t}
	if err := u.repo.Add(ctx, e); err != nil {
		if errors.Is(err, domain.ErrAlreadyWatched) {
			return nil, err
		}
		return nil, api.Dependency(api.KindStorage, fmt.Errorf("add watchlist entry: %w", err))
	}
	return e, nil
}

// Remove returns a NotFound error when the ticker is not on the watchlist.
func (u *WatchlistUsecase) Remove(ctx context.Context, owner, ticker string) error {
	t, err := normalizeTicker(ticker)
	if err != nil {
		return err
	}
	if err := u.repo.Remove(ctx, owner, t); err != nil {
		if errors.Is(err, domain.ErrNotWatched) {
			return api.NotFound("ticker")
		}
		return api.Dependency(api.KindStorage, fmt.Errorf("remove watchlist entry: %w", err))
	}
	return nil
}
