// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/auth/domain"
	"portfolio_backend/internal/feature/auth/transport/http/dto"
	jwtmw "portfolio_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	IssueKey(ctx context.Context, email string) (string, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth         AuthUsecase
	apiKeyHeader string
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// apiKeyHeader はキー発行レスポンスでクライアントに案内するヘッダー名です。
func NewAuthHandler(auth AuthUsecase, apiKeyHeader string) *AuthHandler {
	return &AuthHandler{auth: auth, apiKeyHeader: apiKeyHeader}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時は201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("signup validation failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	if err := h.auth.Signup(c.Request.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			// ユーザー列挙攻撃を防止するため、詳細は返さない
			zap.L().Warn("signup failed", zap.Error(err), zap.String("email", req.Email), zap.String("remote_addr", c.ClientIP()))
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "signup failed"})
			return
		}
		api.WriteError(c, err)
		return
	}
	zap.L().Info("user signup successful", zap.String("email", req.Email), zap.String("remote_addr", c.ClientIP()))
	c.JSON(http.StatusCreated, api.MessageResponse{Message: "ok"})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 認証成功時はJWTトークン付きで200を返却します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("login validation failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			zap.L().Warn("login failed", zap.String("email", req.Email), zap.String("remote_addr", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
			return
		}
		api.WriteError(c, api.Dependency(api.KindStorage, err))
		return
	}
	zap.L().Info("user login successful", zap.String("email", req.Email), zap.String("remote_addr", c.ClientIP()))
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}

// IssueKey はJWTで認証済みのユーザーに新しいAPIキーを発行します。
// 以前のキーは即座に無効になりますが、キャッシュ済みセッションは有効期限まで残ります。
func (h *AuthHandler) IssueKey(c *gin.Context) {
	email := c.GetString(jwtmw.ContextEmail)
	if email == "" {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
		return
	}
	key, err := h.auth.IssueKey(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			api.WriteError(c, api.NotFound("user"))
			return
		}
		api.WriteError(c, api.Dependency(api.KindStorage, err))
		return
	}
	zap.L().Info("api key issued", zap.String("email", email), zap.String("remote_addr", c.ClientIP()))
	c.JSON(http.StatusCreated, dto.KeyRes{APIKey: key, Header: h.apiKeyHeader})
}
