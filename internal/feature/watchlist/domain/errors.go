// Package domain holds the watchlist sentinel errors.
package domain

import "errors"

var (
	ErrAlreadyWatched = errors.New("ticker is already on the watchlist")
	ErrNotWatched     = errors.New("ticker is not on the watchlist")
	ErrInvalidTicker  = errors.New("ticker must be 1 to 32 characters")
)
