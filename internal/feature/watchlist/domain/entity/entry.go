// Package entity defines the domain models for the watchlist feature.
package entity

import "time"

// Entry is one ticker a principal follows. (Owner, Ticker) is unique.
type Entry struct {
	ID        uint      `gorm:"primaryKey"`
	Owner     string    `gorm:"size:254;not null;uniqueIndex:watchlist_owner_ticker,priority:1"`
	Ticker    string    `gorm:"size:32;not null;uniqueIndex:watchlist_owner_ticker,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Entry) TableName() string {
	return "watchlist_entries"
}
