// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User は口座を持つプリンシパルです。メールアドレスが主キーです。
type User struct {
	// Email identifies the principal and is referenced by trades.
	Email string `gorm:"primaryKey;size:254"`

	// Password is a bcrypt hash, never plaintext.
	Password string `gorm:"size:255;not null"`

	// Balance is nil until the account is funded.
	Balance *float64

	CreatedAt time.Time

	IsActive bool `gorm:"not null"`

	// APIKey is an argon2id PHC string. Nil means no key has been issued.
	APIKey *string `gorm:"size:255"`

	// APIKeyFingerprint is a short non-secret digest of the raw key used to
	// narrow verification to a handful of candidates.
	APIKeyFingerprint *string `gorm:"size:16;index"`
}

// TableName keeps the table name stable regardless of gorm naming strategy.
func (User) TableName() string { return "users" }

// HasAPIKey reports whether a key hash is stored.
func (u *User) HasAPIKey() bool {
	return u.APIKey != nil && *u.APIKey != ""
}
