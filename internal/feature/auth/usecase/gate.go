package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"portfolio_backend/internal/api"
	"portfolio_backend/internal/feature/auth/domain"
	"portfolio_backend/internal/feature/auth/domain/entity"
)

// UserDirectory はゲートが参照するプリンシパルの読み取り専用ビューです。
type UserDirectory interface {
	// FindByEmail returns domain.ErrUserNotFound when no principal matches.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByFingerprint returns the principals whose key fingerprint equals fp.
	FindByFingerprint(ctx context.Context, fp string) ([]*entity.User, error)
	// FindAllWithAPIKey returns every principal that has a key hash stored.
	FindAllWithAPIKey(ctx context.Context) ([]*entity.User, error)
}

// SessionCache remembers recent successful verifications keyed by the raw API key.
// Implementations must not store the raw key itself.
type SessionCache interface {
	// Get returns (nil, nil) when nothing is cached.
	Get(ctx context.Context, rawKey string) (*entity.CacheEntry, error)
	Put(ctx context.Context, rawKey string, entry *entity.CacheEntry, ttl time.Duration) error
	Delete(ctx context.Context, rawKey string) error
}

// RateLimiter admits or rejects one request for key.
type RateLimiter interface {
	Allow(key string) bool
}

// CredentialVerifier checks a raw key against a stored hash.
type CredentialVerifier interface {
	Verify(candidate, stored string) bool
}

// Gate decision outcomes reported to the DecisionRecorder.
const (
	OutcomeExcluded    = "excluded"
	OutcomeCacheHit    = "cache_hit"
	OutcomeVerified    = "verified"
	OutcomeMissingKey  = "missing_key"
	OutcomeInvalidKey  = "invalid_key"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// DecisionRecorder counts gate outcomes.
type DecisionRecorder interface {
	RecordDecision(outcome string)
}

// GatePolicy はゲートの挙動を決める設定です。
type GatePolicy struct {
	HeaderName       string
	ExcludedPrefixes []string
	SessionExpiry    time.Duration
	// CacheBypassesRateLimit admits fresh cache hits without consulting the limiter.
	CacheBypassesRateLimit bool
	// FullScanOnMiss verifies every stored key when no fingerprint candidate matches.
	FullScanOnMiss bool
	// RejectInactive refuses keys whose principal has IsActive == false.
	RejectInactive bool
}

// Gate authenticates every non-excluded request by API key and rate limits the principal.
type Gate struct {
	users    UserDirectory
	cache    SessionCache
	limiter  RateLimiter
	verifier CredentialVerifier
	policy   GatePolicy
	logger   *zap.Logger
	recorder DecisionRecorder
	now      func() time.Time
}

type noopRecorder struct{}

func (noopRecorder) RecordDecision(string) {}

// NewGate はGateを生成します。logger と recorder は nil でも構いません。
func NewGate(
	users UserDirectory,
	cache SessionCache,
	limiter RateLimiter,
	verifier CredentialVerifier,
	policy GatePolicy,
	logger *zap.Logger,
	recorder DecisionRecorder,
) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Gate{
		users:    users,
		cache:    cache,
		limiter:  limiter,
		verifier: verifier,
		policy:   policy,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Admit decides whether a request may proceed.
// It returns (nil, nil) for excluded paths and the principal otherwise.
func (g *Gate) Admit(ctx context.Context, path string, header http.Header) (*entity.User, error) {
	if g.isExcluded(path) {
		g.recorder.RecordDecision(OutcomeExcluded)
		return nil, nil
	}

	key := header.Get(g.policy.HeaderName)
	if key == "" {
		g.recorder.RecordDecision(OutcomeMissingKey)
		return nil, domain.ErrKeyNotProvided
	}

	user, err := g.fromCache(ctx, key)
	if err != nil {
		g.recorder.RecordDecision(OutcomeError)
		return nil, err
	}
	if user != nil {
		if g.rejects(user) {
			if err := g.cache.Delete(ctx, key); err != nil {
				g.logger.Warn("session cache delete failed", zap.Error(err))
			}
			g.recorder.RecordDecision(OutcomeInvalidKey)
			return nil, domain.ErrInvalidKey
		}
		if !g.policy.CacheBypassesRateLimit && !g.limiter.Allow(user.Email) {
			g.recorder.RecordDecision(OutcomeRateLimited)
			return nil, domain.ErrRateLimited
		}
		g.recorder.RecordDecision(OutcomeCacheHit)
		return user, nil
	}

	user, err = g.verify(ctx, key)
	if err != nil {
		g.recorder.RecordDecision(OutcomeError)
		return nil, err
	}
	if user == nil || g.rejects(user) {
		g.recorder.RecordDecision(OutcomeInvalidKey)
		return nil, domain.ErrInvalidKey
	}

	// Nothing is committed for a request that was abandoned mid-verification.
	if err := ctx.Err(); err != nil {
		g.recorder.RecordDecision(OutcomeError)
		return nil, err
	}

	entry := &entity.CacheEntry{Authenticated: true, CreatedAt: g.now(), Email: user.Email}
	if err := g.cache.Put(ctx, key, entry, g.policy.SessionExpiry); err != nil {
		g.logger.Warn("session cache put failed", zap.String("email", user.Email), zap.Error(err))
	}

	if !g.limiter.Allow(user.Email) {
		g.recorder.RecordDecision(OutcomeRateLimited)
		return nil, domain.ErrRateLimited
	}
	g.recorder.RecordDecision(OutcomeVerified)
	return user, nil
}

// fromCache returns the principal for a fresh cache entry, or nil.
// Stale or dangling entries are deleted. Cache failures count as a miss.
func (g *Gate) fromCache(ctx context.Context, key string) (*entity.User, error) {
	entry, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("session cache get failed", zap.Error(err))
		return nil, nil
	}
	if entry == nil {
		return nil, nil
	}

	if entry.Fresh(g.now(), g.policy.SessionExpiry) {
		user, err := g.users.FindByEmail(ctx, entry.Email)
		switch {
		case err == nil:
			return user, nil
		case !errors.Is(err, domain.ErrUserNotFound):
			return nil, fmt.Errorf("resolve cached principal: %w", api.Dependency(api.KindStorage, err))
		}
	}

	if err := g.cache.Delete(ctx, key); err != nil {
		g.logger.Warn("session cache delete failed", zap.Error(err))
	}
	return nil, nil
}

// verify finds the principal owning key. Fingerprint candidates are tried
// first; the full scan covers keys stored before fingerprints existed.
func (g *Gate) verify(ctx context.Context, key string) (*entity.User, error) {
	candidates, err := g.users.FindByFingerprint(ctx, Fingerprint(key))
	if err != nil {
		return nil, fmt.Errorf("find key candidates: %w", api.Dependency(api.KindStorage, err))
	}

	tried := make(map[string]struct{}, len(candidates))
	for _, u := range candidates {
		tried[u.Email] = struct{}{}
		if u.HasAPIKey() && g.verifier.Verify(key, *u.APIKey) {
			return u, nil
		}
	}

	if !g.policy.FullScanOnMiss {
		return nil, nil
	}

	all, err := g.users.FindAllWithAPIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan keys: %w", api.Dependency(api.KindStorage, err))
	}
	for _, u := range all {
		if _, ok := tried[u.Email]; ok || !u.HasAPIKey() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.verifier.Verify(key, *u.APIKey) {
			return u, nil
		}
	}
	return nil, nil
}

func (g *Gate) rejects(u *entity.User) bool {
	return g.policy.RejectInactive && !u.IsActive
}

// isExcluded matches whole path segments so "/login" does not cover "/loginx".
func (g *Gate) isExcluded(path string) bool {
	for _, p := range g.policy.ExcludedPrefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
