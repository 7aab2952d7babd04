// Package config はプロセス全体の設定を環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting consumed by the server process.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HTTPAddr string `mapstructure:"http_addr"`

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

type DBConfig struct {
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	Name          string        `mapstructure:"name"`
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	SSLMode       string        `mapstructure:"sslmode"`
	ConnTimeout   time.Duration `mapstructure:"conn_timeout"`
	RunMigrations bool          `mapstructure:"run_migrations"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// TradeCacheTTL はトレード検索結果のキャッシュ有効期間です。
	TradeCacheTTL time.Duration `mapstructure:"trade_cache_ttl"`
}

// Addr returns host:port, or "" when Redis is not configured.
func (c RedisConfig) Addr() string {
	if c.Host == "" {
		return ""
	}
	return c.Host + ":" + c.Port
}

// AuthConfig groups the credential gate settings.
type AuthConfig struct {
	APIKeyHeader  string        `mapstructure:"api_key_header"`
	PublicPaths   []string      `mapstructure:"public_paths"`
	SessionExpiry time.Duration `mapstructure:"session_expiry"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTExpiry     time.Duration `mapstructure:"jwt_expiry"`

	Argon2Time        uint32 `mapstructure:"argon2_time"`
	Argon2Memory      uint32 `mapstructure:"argon2_memory"`
	Argon2Parallelism uint8  `mapstructure:"argon2_parallelism"`

	// CacheBypassesRateLimit keeps the historical behaviour where a cached
	// session skips the rate limiter.
	CacheBypassesRateLimit bool `mapstructure:"cache_bypasses_rate_limit"`
	// FullScanOnFingerprintMiss verifies every stored key when no
	// fingerprint candidate matches.
	FullScanOnFingerprintMiss bool `mapstructure:"full_scan_on_fingerprint_miss"`
	// RejectInactivePrincipals applies the login IsActive check to API keys too.
	RejectInactivePrincipals bool `mapstructure:"reject_inactive_principals"`
}

type RateLimitConfig struct {
	Window   time.Duration `mapstructure:"window"`
	Requests int           `mapstructure:"requests"`
	// Policy is "lazy" (reset only once the limit is hit) or "eager".
	Policy string `mapstructure:"policy"`
}

type MetricsConfig struct {
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
}

// envBindings maps config keys onto the flat environment variable names used in deployment.
var envBindings = map[string]string{
	"app.env":                            "APP_ENV",
	"app.http_addr":                      "HTTP_ADDR",
	"app.cors_origins":                   "CORS_ALLOWED_ORIGINS",
	"app.shutdown_timeout":               "SHUTDOWN_TIMEOUT",
	"log.level":                          "LOG_LEVEL",
	"log.encoding":                       "LOG_ENCODING",
	"log.development":                    "LOG_DEVELOPMENT",
	"db.user":                            "DB_USER",
	"db.password":                        "DB_PASSWORD",
	"db.name":                            "DB_NAME",
	"db.host":                            "DB_HOST",
	"db.port":                            "DB_PORT",
	"db.sslmode":                         "DB_SSLMODE",
	"db.conn_timeout":                    "DB_CONN_TIMEOUT",
	"db.run_migrations":                  "RUN_MIGRATIONS",
	"redis.host":                         "REDIS_HOST",
	"redis.port":                         "REDIS_PORT",
	"redis.password":                     "REDIS_PASSWORD",
	"redis.db":                           "REDIS_DB",
	"redis.trade_cache_ttl":              "TRADE_CACHE_TTL",
	"auth.api_key_header":                "API_KEY_HEADER",
	"auth.public_paths":                  "PUBLIC_PATHS",
	"auth.session_expiry":                "SESSION_EXPIRY",
	"auth.jwt_secret":                    "JWT_SECRET",
	"auth.jwt_expiry":                    "JWT_EXPIRY",
	"auth.argon2_time":                   "ARGON2_TIME",
	"auth.argon2_memory":                 "ARGON2_MEMORY",
	"auth.argon2_parallelism":            "ARGON2_PARALLELISM",
	"auth.cache_bypasses_rate_limit":     "CACHE_BYPASSES_RATE_LIMIT",
	"auth.full_scan_on_fingerprint_miss": "FULL_SCAN_ON_FINGERPRINT_MISS",
	"auth.reject_inactive_principals":    "REJECT_INACTIVE_PRINCIPALS",
	"rate_limit.window":                  "RATE_LIMIT_WINDOW",
	"rate_limit.requests":                "RATE_LIMIT_REQUESTS",
	"rate_limit.policy":                  "RATE_LIMIT_POLICY",
	"metrics.risk_free_rate":             "RISK_FREE_RATE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http_addr", ":8080")
	v.SetDefault("app.cors_origins", []string{"*"})
	v.SetDefault("app.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.development", false)
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.conn_timeout", "60s")
	v.SetDefault("db.run_migrations", false)
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.trade_cache_ttl", "30s")
	v.SetDefault("auth.api_key_header", "X-API-Key")
	v.SetDefault("auth.public_paths", []string{"/healthz", "/readyz", "/signup", "/login", "/keys", "/metrics"})
	v.SetDefault("auth.session_expiry", "30m")
	v.SetDefault("auth.jwt_expiry", "1h")
	// argon2id parameters match the hashes already stored in production.
	v.SetDefault("auth.argon2_time", 2)
	v.SetDefault("auth.argon2_memory", 102400)
	v.SetDefault("auth.argon2_parallelism", 8)
	v.SetDefault("auth.cache_bypasses_rate_limit", true)
	v.SetDefault("auth.full_scan_on_fingerprint_miss", true)
	v.SetDefault("auth.reject_inactive_principals", false)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.requests", 5)
	v.SetDefault("rate_limit.policy", "lazy")
	v.SetDefault("metrics.risk_free_rate", 4.0)
}

// Load reads the configuration from the environment on top of the defaults.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	// PUBLIC_PATHS arrives as a single comma separated string.
	cfg.Auth.PublicPaths = splitList(cfg.Auth.PublicPaths)
	cfg.App.CORSOrigins = splitList(cfg.App.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the gate cannot run with.
func (c Config) Validate() error {
	if c.RateLimit.Requests <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	if c.Auth.SessionExpiry <= 0 {
		return errors.New("SESSION_EXPIRY must be positive")
	}
	if c.Auth.APIKeyHeader == "" {
		return errors.New("API_KEY_HEADER must not be empty")
	}
	if c.Auth.Argon2Parallelism == 0 || c.Auth.Argon2Time == 0 {
		return errors.New("argon2 time and parallelism must be positive")
	}
	if c.Auth.Argon2Memory < 8*uint32(c.Auth.Argon2Parallelism) {
		return fmt.Errorf("ARGON2_MEMORY must be at least %d KiB", 8*uint32(c.Auth.Argon2Parallelism))
	}
	switch strings.ToLower(c.RateLimit.Policy) {
	case "lazy", "eager":
	default:
		return fmt.Errorf("unknown RATE_LIMIT_POLICY %q", c.RateLimit.Policy)
	}
	return nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, p := range strings.Split(item, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
