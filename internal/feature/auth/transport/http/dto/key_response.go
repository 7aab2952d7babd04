package dto

// KeyRes は/keysエンドポイントのレスポンスです。キーはこの一度だけ返されます。
type KeyRes struct {
	APIKey string `json:"api_key"`
	Header string `json:"header"`
}
