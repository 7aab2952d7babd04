// Package handler はポートフォリオ指標のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/auth/transport/middleware"
	"portfolio_backend/internal/feature/metrics/transport/http/dto"
	"portfolio_backend/internal/feature/metrics/usecase"
	"portfolio_backend/internal/feature/trades/domain/entity"
	tradeshandler "portfolio_backend/internal/feature/trades/transport/handler"
)

// MetricsUsecase はハンドラー側で定義するユースケースインターフェースです。
type MetricsUsecase interface {
	Profits(ctx context.Context, owner string, iv usecase.Interval, f entity.TradeFilter) ([]usecase.Bucket, error)
	Metric(ctx context.Context, owner, name string, iv usecase.Interval, riskFree *float64, f entity.TradeFilter) (float64, error)
	WinRate(ctx context.Context, owner string, f entity.TradeFilter) (float64, error)
	Volume(ctx context.Context, owner string, f entity.TradeFilter) (float64, error)
	PnL(ctx context.Context, owner string, f entity.TradeFilter) (usecase.PnL, error)
	Allocation(ctx context.Context, owner string, f entity.TradeFilter) (map[string]float64, error)
}

type MetricsHandler struct {
	uc MetricsUsecase
}

func NewMetricsHandler(uc MetricsUsecase) *MetricsHandler {
	return &MetricsHandler{uc: uc}
}

// request resolves the principal and the optional filter body.
func request(c *gin.Context) (string, entity.TradeFilter, bool) {
	user, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return "", entity.TradeFilter{}, false
	}
	f, ok := tradeshandler.BindFilter(c)
	if !ok {
		return "", f, false
	}
	return user.Email, f, true
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrUndefinedStatistic) {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
		return
	}
	api.WriteError(c, err)
}

func parseInterval(c *gin.Context, raw string) (usecase.Interval, bool) {
	iv, err := usecase.ParseInterval(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "interval must be one of d, m, y"})
		return "", false
	}
	return iv, true
}

// Profits returns realised profit per period.
//
// POST /portfolio/profits/:interval
func (h *MetricsHandler) Profits(c *gin.Context) {
	iv, ok := parseInterval(c, c.Param("interval"))
	if !ok {
		return
	}
	owner, f, ok := request(c)
	if !ok {
		return
	}

	buckets, err := h.uc.Profits(c.Request.Context(), owner, iv, f)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make(dto.ProfitsRes, len(buckets))
	for _, b := range buckets {
		out[b.Key] = b.Profit
	}
	c.JSON(http.StatusOK, out)
}

// Metric computes sharpe, sortino or std over the profit series.
//
// POST /portfolio/metrics/:metric?interval=d&risk_free=4.0
func (h *MetricsHandler) Metric(c *gin.Context) {
	iv, ok := parseInterval(c, c.DefaultQuery("interval", string(usecase.Daily)))
	if !ok {
		return
	}
	var rf *float64
	if raw, present := c.GetQuery("risk_free"); present {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "risk_free must be a finite number"})
			return
		}
		rf = &v
	}
	owner, f, ok := request(c)
	if !ok {
		return
	}

	name := c.Param("metric")
	v, err := h.uc.Metric(c.Request.Context(), owner, name, iv, rf, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MetricRes{Metric: name, Interval: string(iv), Value: v})
}

// POST /portfolio/win-rate
func (h *MetricsHandler) WinRate(c *gin.Context) {
	owner, f, ok := request(c)
	if !ok {
		return
	}
	v, err := h.uc.WinRate(c.Request.Context(), owner, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WinRateRes{WinRate: v})
}

// POST /portfolio/volume
func (h *MetricsHandler) Volume(c *gin.Context) {
	owner, f, ok := request(c)
	if !ok {
		return
	}
	v, err := h.uc.Volume(c.Request.Context(), owner, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.VolumeRes{Volume: v})
}

// POST /portfolio/pnl
func (h *MetricsHandler) PnL(c *gin.Context) {
	owner, f, ok := request(c)
	if !ok {
		return
	}
	v, err := h.uc.PnL(c.Request.Context(), owner, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PnLRes{Realised: v.Realised, Unrealised: v.Unrealised})
}

// POST /portfolio/allocation
func (h *MetricsHandler) Allocation(c *gin.Context) {
	owner, f, ok := request(c)
	if !ok {
		return
	}
	v, err := h.uc.Allocation(c.Request.Context(), owner, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AllocationRes(v))
}
