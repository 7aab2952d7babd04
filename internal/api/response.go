// Package api はHTTPレスポンスの共通型とエラー変換を提供します。
package api

// ErrorResponse はエラー時のレスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// MessageResponse は処理結果メッセージのみを返すレスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse はログイン成功時のレスポンスです。
type TokenResponse struct {
	Token string `json:"token"`
}
