package di

import (
	"go.uber.org/zap"

	"portfolio_backend/internal/feature/auth/usecase"
	"portfolio_backend/internal/platform/config"
	"portfolio_backend/internal/shared/ratelimiter"
)

// Argon2Params maps the configured cost onto the verifier parameters.
func Argon2Params(cfg config.AuthConfig) usecase.Argon2Params {
	p := usecase.DefaultArgon2Params()
	p.Time = cfg.Argon2Time
	p.Memory = cfg.Argon2Memory
	p.Threads = cfg.Argon2Parallelism
	return p
}

// NewGate assembles the credential gate from configuration.
func NewGate(
	cfg config.Config,
	users usecase.UserDirectory,
	cache usecase.SessionCache,
	verifier usecase.CredentialVerifier,
	recorder usecase.DecisionRecorder,
	logger *zap.Logger,
) (*usecase.Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	limiter := ratelimiter.NewKeyedLimiter(
		cfg.RateLimit.Requests,
		cfg.RateLimit.Window,
		ratelimiter.WithPolicy(ratelimiter.ParsePolicy(cfg.RateLimit.Policy)),
	)

	return usecase.NewGate(users, cache, limiter, verifier, usecase.GatePolicy{
		HeaderName:             cfg.Auth.APIKeyHeader,
		ExcludedPrefixes:       cfg.Auth.PublicPaths,
		SessionExpiry:          cfg.Auth.SessionExpiry,
		CacheBypassesRateLimit: cfg.Auth.CacheBypassesRateLimit,
		FullScanOnMiss:         cfg.Auth.FullScanOnFingerprintMiss,
		RejectInactive:         cfg.Auth.RejectInactivePrincipals,
	}, logger, recorder), nil
}
