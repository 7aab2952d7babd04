package usecase

import (
	"context"
	"sync"
	"time"

	"portfolio_backend/internal/feature/auth/domain"
	"portfolio_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository はUserRepositoryとUserDirectoryのモック実装です。
type mockUserRepository struct {
	CreateFunc            func(user *entity.User) error
	FindByEmailFunc       func(email string) (*entity.User, error)
	UpdateAPIKeyFunc      func(email, hash, fingerprint string) error
	FindByFingerprintFunc func(fp string) ([]*entity.User, error)
	FindAllWithAPIKeyFunc func() ([]*entity.User, error)

	mu        sync.Mutex
	scanCalls int
}

func (m *mockUserRepository) Create(_ context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) UpdateAPIKey(_ context.Context, email, hash, fingerprint string) error {
	if m.UpdateAPIKeyFunc != nil {
		return m.UpdateAPIKeyFunc(email, hash, fingerprint)
	}
	return nil
}

func (m *mockUserRepository) FindByFingerprint(_ context.Context, fp string) ([]*entity.User, error) {
	if m.FindByFingerprintFunc != nil {
		return m.FindByFingerprintFunc(fp)
	}
	return nil, nil
}

func (m *mockUserRepository) FindAllWithAPIKey(_ context.Context) ([]*entity.User, error) {
	m.mu.Lock()
	m.scanCalls++
	m.mu.Unlock()
	if m.FindAllWithAPIKeyFunc != nil {
		return m.FindAllWithAPIKeyFunc()
	}
	return nil, nil
}

// mockJWTGenerator はJWTGeneratorのモック実装です。
type mockJWTGenerator struct {
	GenerateTokenFunc func(email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(email)
	}
	return "mock-jwt-token", nil
}

// memoryCache は呼び出しを記録するSessionCacheのテスト実装です。
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*entity.CacheEntry
	getErr  error
	putErr  error
	puts    int
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*entity.CacheEntry{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (*entity.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[key], nil
}

func (c *memoryCache) Put(_ context.Context, key string, e *entity.CacheEntry, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[key] = e
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	delete(c.entries, key)
	return nil
}

// countingLimiter は上限付きの単純なリミッターです。
type countingLimiter struct {
	mu    sync.Mutex
	limit int
	calls map[string]int
}

func newCountingLimiter(limit int) *countingLimiter {
	return &countingLimiter{limit: limit, calls: map[string]int{}}
}

func (l *countingLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[key]++
	return l.calls[key] <= l.limit
}

func (l *countingLimiter) Calls(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[key]
}

// countingVerifier wraps a real verifier and counts invocations.
type countingVerifier struct {
	inner CredentialVerifier
	mu    sync.Mutex
	calls int
}

func (v *countingVerifier) Verify(candidate, stored string) bool {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	return v.inner.Verify(candidate, stored)
}

func (v *countingVerifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

type recordingRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingRecorder) RecordDecision(o string) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
}

func (r *recordingRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		return ""
	}
	return r.outcomes[len(r.outcomes)-1]
}
