package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheEntry_Fresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := 30 * time.Minute

	tests := []struct {
		name  string
		entry *CacheEntry
		want  bool
	}{
		{"nil entry", nil, false},
		{"fresh", &CacheEntry{Authenticated: true, Email: "a@b.c", CreatedAt: now.Add(-time.Minute)}, true},
		{"exactly at expiry", &CacheEntry{Authenticated: true, Email: "a@b.c", CreatedAt: now.Add(-expiry)}, false},
		{"stale", &CacheEntry{Authenticated: true, Email: "a@b.c", CreatedAt: now.Add(-time.Hour)}, false},
		{"not authenticated", &CacheEntry{Email: "a@b.c", CreatedAt: now}, false},
		{"missing email", &CacheEntry{Authenticated: true, CreatedAt: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.entry.Fresh(now, expiry))
		})
	}
}
