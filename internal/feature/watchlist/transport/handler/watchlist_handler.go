package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/auth/transport/middleware"
	"portfolio_backend/internal/feature/watchlist/domain"
	"portfolio_backend/internal/feature/watchlist/domain/entity"
	"portfolio_backend/internal/feature/watchlist/transport/http/dto"
)

// WatchlistUsecase はウォッチリスト操作のユースケースインターフェースです。
type WatchlistUsecase interface {
	List(ctx context.Context, owner string) ([]entity.Entry, error)
	Add(ctx context.Context, owner, ticker string) (*entity.Entry, error)
	Remove(ctx context.Context, owner, ticker string) error
}

// WatchlistHandler はウォッチリストのHTTPリクエストを処理します。
type WatchlistHandler struct {
	uc WatchlistUsecase
}

func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

func owner(c *gin.Context) (string, bool) {
	user, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return user.Email, true
}

// List はウォッチリストをティッカー順に返します。
//
// GET /portfolio/watchlist
func (h *WatchlistHandler) List(c *gin.Context) {
	email, ok := owner(c)
	if !ok {
		return
	}
	entries, err := h.uc.List(c.Request.Context(), email)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	out := make([]dto.EntryRes, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.EntryRes{Ticker: e.Ticker, AddedAt: e.CreatedAt})
	}
	c.JSON(http.StatusOK, out)
}

// POST /portfolio/watchlist
func (h *WatchlistHandler) Add(c *gin.Context) {
	email, ok := owner(c)
	if !ok {
		return
	}
	var req dto.AddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	e, err := h.uc.Add(c.Request.Context(), email, req.Ticker)
	switch {
	case errors.Is(err, domain.ErrInvalidTicker):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyWatched):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case err != nil:
		api.WriteError(c, err)
	default:
		c.JSON(http.StatusCreated, dto.EntryRes{Ticker: e.Ticker, AddedAt: e.CreatedAt})
	}
}

// DELETE /portfolio/watchlist/:ticker
func (h *WatchlistHandler) Remove(c *gin.Context) {
	email, ok := owner(c)
	if !ok {
		return
	}
	err := h.uc.Remove(c.Request.Context(), email, c.Param("ticker"))
	switch {
	case errors.Is(err, domain.ErrInvalidTicker):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case err != nil:
		api.WriteError(c, err)
	default:
		c.Status(http.StatusNoContent)
	}
}
