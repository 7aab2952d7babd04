package entity

import "time"

// CacheEntry records a successful key verification.
// It is advisory: losing it only costs a re-verification.
type CacheEntry struct {
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"created_at"`
	Email         string    `json:"email"`
}

// Fresh reports whether the entry still admits without re-verification.
func (e *CacheEntry) Fresh(now time.Time, expiry time.Duration) bool {
	return e != nil && e.Authenticated && e.Email != "" && now.Sub(e.CreatedAt) < expiry
}
