// Package adapters はwatchlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/watchlist/domain"
	"portfolio_backend/internal/feature/watchlist/domain/entity"
	"portfolio_backend/internal/feature/watchlist/usecase"
)

type watchlistGorm struct {
	db *gorm.DB
}

var _ usecase.WatchlistRepository = (*watchlistGorm)(nil)

// NewWatchlistRepository は指定されたDB接続でリポジトリを生成します。
func NewWatchlistRepository(db *gorm.DB) *watchlistGorm {
	return &watchlistGorm{db: db}
}

// List はティッカー順に所有者のエントリを返します。
func (r *watchlistGorm) List(ctx context.Context, owner string) ([]entity.Entry, error) {
	var entries []entity.Entry
	if err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("ticker ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *watchlistGorm) Add(ctx context.Context, e *entity.Entry) error {
	err := r.db.WithContext(ctx).Create(e).Error
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyWatched
	}
	return err
}

func (r *watchlistGorm) Remove(ctx context.Context, owner, ticker string) error {
	res := r.db.WithContext(ctx).
		Where("owner = ? AND ticker = ?", owner, ticker).
		Delete(&entity.Entry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotWatched
	}
	return nil
}
