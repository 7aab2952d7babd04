// Package handler はtradesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/auth/transport/middleware"
	"portfolio_backend/internal/feature/trades/domain/entity"
	"portfolio_backend/internal/feature/trades/transport/http/dto"
)

// TradesUsecase はハンドラー側で定義するユースケースインターフェースです。
type TradesUsecase interface {
	Find(ctx context.Context, owner string, f entity.TradeFilter) ([]entity.Trade, error)
}

type TradesHandler struct {
	uc TradesUsecase
}

func NewTradesHandler(uc TradesUsecase) *TradesHandler {
	return &TradesHandler{uc: uc}
}

// BindFilter reads an optional JSON filter body. An empty body means no filter.
func BindFilter(c *gin.Context) (entity.TradeFilter, bool) {
	var f entity.TradeFilter
	if err := c.ShouldBindJSON(&f); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid filter"})
		return f, false
	}
	return f, true
}

// Trades returns the principal's trades matching the filter body.
//
// POST /portfolio/trades
func (h *TradesHandler) Trades(c *gin.Context) {
	user, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	f, ok := BindFilter(c)
	if !ok {
		return
	}

	trades, err := h.uc.Find(c.Request.Context(), user.Email, f)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTrades(trades))
}

// Balance は認証済みユーザーの残高を返します。
//
// GET /portfolio/balance
func (h *TradesHandler) Balance(c *gin.Context) {
	user, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, dto.BalanceRes{Balance: user.Balance})
}
