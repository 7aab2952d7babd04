// Package middleware はAPIキーによる認証ゲートをginに接続します。
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/auth/domain"
	"portfolio_backend/internal/feature/auth/domain/entity"
)

// ContextPrincipal is the gin context key holding the admitted *entity.User.
const ContextPrincipal = "principal"

// Admitter decides whether a request may proceed.
type Admitter interface {
	Admit(ctx context.Context, path string, header http.Header) (*entity.User, error)
}

// APIKeyGate runs every request through the gate before any handler.
func APIKeyGate(gate Admitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := gate.Admit(c.Request.Context(), c.Request.URL.Path, c.Request.Header)
		if err != nil {
			abort(c, err)
			return
		}
		if user != nil {
			c.Set(ContextPrincipal, user)
		}
		c.Next()
	}
}

// Principal returns the admitted principal, if any.
func Principal(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}

// RequirePrincipal rejects requests that reached a handler without one.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Principal(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: domain.ErrKeyNotProvided.Error()})
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrKeyNotProvided),
		errors.Is(err, domain.ErrInvalidKey),
		errors.Is(err, domain.ErrRateLimited):
		zap.L().Info("request rejected",
			zap.String("reason", err.Error()),
			zap.String("path", c.Request.URL.Path),
			zap.String("remote_addr", c.ClientIP()),
		)
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "request cancelled"})
	default:
		api.WriteError(c, err)
	}
}
