// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// MetricsAddr is the address the Prometheus /metrics listener binds to; empty disables it.
	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the minimum zerolog level: trace, debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogPretty enables console output instead of JSON.
	LogPretty bool `mapstructure:"LOG_PRETTY"`

	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTKeyID is written to the kid header so keys can be rotated later.
	JWTKeyID string `mapstructure:"JWT_KEY_ID"`
	// JWTIssuer is the iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// EmailVerificationTTLHours is the lifetime of email verification tokens.
	EmailVerificationTTLHours int `mapstructure:"EMAIL_VERIFICATION_TTL_HOURS"`

	// SessionLifetime is how long a session row stays valid after creation (e.g. "168h").
	SessionLifetime string `mapstructure:"SESSION_LIFETIME"`
	// SessionTouchInterval is the minimum gap between last_activity_at writes.
	SessionTouchInterval string `mapstructure:"SESSION_TOUCH_INTERVAL"`

	// PasswordAlgorithm selects the hasher for new passwords: bcrypt or argon2id.
	PasswordAlgorithm string `mapstructure:"PASSWORD_ALGORITHM"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Argon2MemoryKB is the argon2id memory cost in KiB.
	Argon2MemoryKB int `mapstructure:"ARGON2_MEMORY_KB"`
	// Argon2Time is the argon2id iteration count.
	Argon2Time int `mapstructure:"ARGON2_TIME"`
	// Argon2Parallelism is the argon2id lane count.
	Argon2Parallelism int `mapstructure:"ARGON2_PARALLELISM"`

	// LoginMaxFailedAttempts is the failed-attempt count at which an identifier is locked out.
	LoginMaxFailedAttempts int `mapstructure:"LOGIN_MAX_FAILED_ATTEMPTS"`
	// LoginLockoutWindow is the window failed attempts are counted over (e.g. "15m").
	LoginLockoutWindow string `mapstructure:"LOGIN_LOCKOUT_WINDOW"`
	// RateLimitBackend is "postgres" (count login_attempts rows) or "redis" (fixed-window counter).
	RateLimitBackend string `mapstructure:"RATE_LIMIT_BACKEND"`
	// RedisAddr is the Redis address used when RateLimitBackend is "redis".
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisDB is the Redis logical database.
	RedisDB int `mapstructure:"REDIS_DB"`

	// LazyDeviceBindingPortals is a comma-separated list of portals that bind the device on first login
	// instead of rejecting logins without a primary binding.
	LazyDeviceBindingPortals string `mapstructure:"LAZY_DEVICE_BINDING_PORTALS"`

	// AccountStatusPolicyFile is an optional Rego module replacing the built-in account-status policy.
	AccountStatusPolicyFile string `mapstructure:"ACCOUNT_STATUS_POLICY_FILE"`

	// Auth check toggles. Any of them set while APP_ENV=production fails Load.
	DisablePasswordVerification bool `mapstructure:"AUTH_DISABLE_PASSWORD_VERIFICATION"`
	DisableAccountStatusCheck   bool `mapstructure:"AUTH_DISABLE_ACCOUNT_STATUS_CHECK"`
	DisableDeviceFingerprint    bool `mapstructure:"AUTH_DISABLE_DEVICE_FINGERPRINT"`
	DisableIPMismatchCheck      bool `mapstructure:"AUTH_DISABLE_IP_MISMATCH_CHECK"`
	DisableEmailVerification    bool `mapstructure:"AUTH_DISABLE_EMAIL_VERIFICATION"`

	// AuditKafkaBrokers is a comma-separated list of Kafka brokers; when set, audit events are also published there.
	AuditKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events.
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty uses no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// TraceSampleRatio is the fraction of new traces sampled, 0 to 1. Sampled parents are always followed.
	TraceSampleRatio float64 `mapstructure:"OTEL_TRACES_SAMPLER_ARG"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_KEY_ID", "")
	v.SetDefault("JWT_ISSUER", "marketplace-auth")
	v.SetDefault("JWT_AUDIENCE", "marketplace-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("EMAIL_VERIFICATION_TTL_HOURS", 24)
	v.SetDefault("SESSION_LIFETIME", "168h")
	v.SetDefault("SESSION_TOUCH_INTERVAL", "1m")
	v.SetDefault("PASSWORD_ALGORITHM", "bcrypt")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("ARGON2_MEMORY_KB", 64*1024)
	v.SetDefault("ARGON2_TIME", 3)
	v.SetDefault("ARGON2_PARALLELISM", 2)
	v.SetDefault("LOGIN_MAX_FAILED_ATTEMPTS", 5)
	v.SetDefault("LOGIN_LOCKOUT_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_BACKEND", "postgres")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LAZY_DEVICE_BINDING_PORTALS", "supplier")
	v.SetDefault("ACCOUNT_STATUS_POLICY_FILE", "")
	v.SetDefault("AUTH_DISABLE_PASSWORD_VERIFICATION", false)
	v.SetDefault("AUTH_DISABLE_ACCOUNT_STATUS_CHECK", false)
	v.SetDefault("AUTH_DISABLE_DEVICE_FINGERPRINT", false)
	v.SetDefault("AUTH_DISABLE_IP_MISMATCH_CHECK", false)
	v.SetDefault("AUTH_DISABLE_EMAIL_VERIFICATION", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "marketplace-audit")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_TRACES_SAMPLER_ARG", 1.0)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}

	if cfg.Env == "production" {
		if enabled := cfg.EnabledAuthBypasses(); len(enabled) > 0 {
			return nil, fmt.Errorf("config: auth check toggles must be off when APP_ENV=production (enabled: %s)", strings.Join(enabled, ", "))
		}
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	cfg.PasswordAlgorithm = strings.ToLower(strings.TrimSpace(cfg.PasswordAlgorithm))
	if cfg.PasswordAlgorithm != "bcrypt" && cfg.PasswordAlgorithm != "argon2id" {
		return nil, fmt.Errorf("config: PASSWORD_ALGORITHM must be bcrypt or argon2id, got %q", cfg.PasswordAlgorithm)
	}

	if cfg.LoginMaxFailedAttempts <= 0 {
		return nil, errors.New("config: LOGIN_MAX_FAILED_ATTEMPTS must be positive")
	}

	cfg.RateLimitBackend = strings.ToLower(strings.TrimSpace(cfg.RateLimitBackend))
	if cfg.RateLimitBackend != "postgres" && cfg.RateLimitBackend != "redis" {
		return nil, fmt.Errorf("config: RATE_LIMIT_BACKEND must be postgres or redis, got %q", cfg.RateLimitBackend)
	}

	if cfg.TraceSampleRatio < 0 || cfg.TraceSampleRatio > 1 {
		return nil, errors.New("config: OTEL_TRACES_SAMPLER_ARG must be between 0 and 1")
	}

	return &cfg, nil
}

// EnabledAuthBypasses returns the env names of auth check toggles that are switched on.
func (c *Config) EnabledAuthBypasses() []string {
	var out []string
	if c.DisablePasswordVerification {
		out = append(out, "AUTH_DISABLE_PASSWORD_VERIFICATION")
	}
	if c.DisableAccountStatusCheck {
		out = append(out, "AUTH_DISABLE_ACCOUNT_STATUS_CHECK")
	}
	if c.DisableDeviceFingerprint {
		out = append(out, "AUTH_DISABLE_DEVICE_FINGERPRINT")
	}
	if c.DisableIPMismatchCheck {
		out = append(out, "AUTH_DISABLE_IP_MISMATCH_CHECK")
	}
	if c.DisableEmailVerification {
		out = append(out, "AUTH_DISABLE_EMAIL_VERIFICATION")
	}
	return out
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWTAccessTTL, 15*time.Minute)
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return parseDuration(c.JWTRefreshTTL, 168*time.Hour)
}

// SessionTTL parses SessionLifetime. Returns 168h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.SessionLifetime, 168*time.Hour)
}

// TouchInterval parses SessionTouchInterval. Returns 1m if unset or invalid.
func (c *Config) TouchInterval() time.Duration {
	return parseDuration(c.SessionTouchInterval, time.Minute)
}

// LockoutWindow parses LoginLockoutWindow. Returns 15m if unset or invalid.
func (c *Config) LockoutWindow() time.Duration {
	return parseDuration(c.LoginLockoutWindow, 15*time.Minute)
}

// LazyDeviceBindingList returns the portals configured for lazy device binding.
func (c *Config) LazyDeviceBindingList() []string {
	return splitList(c.LazyDeviceBindingPortals)
}

// AuditKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the Kafka audit sink is enabled (non-empty list).
func (c *Config) AuditKafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.AuditKafkaBrokers)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
