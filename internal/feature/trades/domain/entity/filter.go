package entity

import "time"

// TradeFilter は検索条件です。nil のフィールドは条件に含めません。
// 範囲条件はすべて両端を含みます。
type TradeFilter struct {
	IsActive *bool   `json:"is_active"`
	Ticker   *string `json:"ticker"`

	MinDollarAmount  *float64 `json:"min_dollar_amount"`
	MaxDollarAmount  *float64 `json:"max_dollar_amount"`
	MinUnrealisedPnL *float64 `json:"min_unrealised_pnl"`
	MaxUnrealisedPnL *float64 `json:"max_unrealised_pnl"`
	MinRealisedPnL   *float64 `json:"min_realised_pnl"`
	MaxRealisedPnL   *float64 `json:"max_realised_pnl"`
	MinOpenPrice     *float64 `json:"min_open_price"`
	MaxOpenPrice     *float64 `json:"max_open_price"`
	MinClosePrice    *float64 `json:"min_close_price"`
	MaxClosePrice    *float64 `json:"max_close_price"`

	OpenStart  *time.Time `json:"open_start"`
	OpenEnd    *time.Time `json:"open_end"`
	CloseStart *time.Time `json:"close_start"`
	CloseEnd   *time.Time `json:"close_end"`

	OrderType *OrderType `json:"order_type"`
}
