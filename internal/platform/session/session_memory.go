package session

import (
	"context"
	"sync"
	"time"

	"portfolio_backend/internal/feature/auth/domain/entity"
	"portfolio_backend/internal/feature/auth/usecase"
)

var _ usecase.SessionCache = (*SessionMemory)(nil)

type memoryItem struct {
	entry     entity.CacheEntry
	expiresAt time.Time
}

// SessionMemory is the in-process fallback used when Redis is unavailable.
// Expired items are invisible to Get and removed by Sweep.
type SessionMemory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewSessionMemory creates an empty SessionMemory.
func NewSessionMemory() *SessionMemory {
	return &SessionMemory{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (m *SessionMemory) Get(_ context.Context, rawKey string) (*entity.CacheEntry, error) {
	k := digest(rawKey)

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[k]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(item.expiresAt) {
		delete(m.items, k)
		return nil, nil
	}
	e := item.entry
	return &e, nil
}

func (m *SessionMemory) Put(_ context.Context, rawKey string, entry *entity.CacheEntry, ttl time.Duration) error {
	if entry == nil || ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	m.items[digest(rawKey)] = memoryItem{entry: *entry, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *SessionMemory) Delete(_ context.Context, rawKey string) error {
	m.mu.Lock()
	delete(m.items, digest(rawKey))
	m.mu.Unlock()
	return nil
}

// Sweep removes expired items and returns how many were dropped.
func (m *SessionMemory) Sweep(_ context.Context) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored items, expired or not.
func (m *SessionMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
