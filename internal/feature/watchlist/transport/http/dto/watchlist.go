// Package dto defines data transfer objects for the watchlist HTTP API.
package dto

import "time"

type AddReq struct {
	Ticker string `json:"ticker" binding:"required"`
}

type EntryRes struct {
	Ticker  string    `json:"ticker"`
	AddedAt time.Time `json:"added_at"`
}
