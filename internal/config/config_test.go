package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8080")
	}
	if cfg.JWTIssuer != "marketplace-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "marketplace-auth")
	}
	if cfg.JWTAudience != "marketplace-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "marketplace-api")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.PasswordAlgorithm != "bcrypt" {
		t.Errorf("PasswordAlgorithm = %q, want bcrypt", cfg.PasswordAlgorithm)
	}
	if cfg.LoginMaxFailedAttempts != 5 {
		t.Errorf("LoginMaxFailedAttempts = %d, want 5", cfg.LoginMaxFailedAttempts)
	}
	if cfg.RateLimitBackend != "postgres" {
		t.Errorf("RateLimitBackend = %q, want postgres", cfg.RateLimitBackend)
	}
	if got := cfg.LazyDeviceBindingList(); len(got) != 1 || got[0] != "supplier" {
		t.Errorf("LazyDeviceBindingList = %v, want [supplier]", got)
	}
	if len(cfg.EnabledAuthBypasses()) != 0 {
		t.Errorf("auth toggles should default to off, got %v", cfg.EnabledAuthBypasses())
	}
	if cfg.TouchInterval() != time.Minute {
		t.Errorf("TouchInterval = %v, want 1m", cfg.TouchInterval())
	}
	if cfg.LockoutWindow() != 15*time.Minute {
		t.Errorf("LockoutWindow = %v, want 15m", cfg.LockoutWindow())
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":9091")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("LOGIN_MAX_FAILED_ATTEMPTS", "3")
	os.Setenv("RATE_LIMIT_BACKEND", "Redis")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":9091" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9091")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.LoginMaxFailedAttempts != 3 {
		t.Errorf("LoginMaxFailedAttempts = %d, want 3", cfg.LoginMaxFailedAttempts)
	}
	if cfg.RateLimitBackend != "redis" {
		t.Errorf("RateLimitBackend = %q, want redis", cfg.RateLimitBackend)
	}
}

func TestLoad_BCRYPT_COSTRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 12, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("GRPC_ADDR", ":8080")
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_InvalidChoices(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{"password algorithm", "PASSWORD_ALGORITHM", "md5"},
		{"rate limit backend", "RATE_LIMIT_BACKEND", "memcached"},
		{"zero attempts", "LOGIN_MAX_FAILED_ATTEMPTS", "0"},
		{"sample ratio above one", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("GRPC_ADDR", ":8080")
			os.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("Load with %s=%s should fail", tc.key, tc.val)
			}
		})
	}
}

func TestLoad_AuthTogglesRejectedInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")
	os.Setenv("APP_ENV", "production")
	os.Setenv("AUTH_DISABLE_DEVICE_FINGERPRINT", "true")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should fail when an auth toggle is on in production")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
	if !strings.Contains(err.Error(), "AUTH_DISABLE_DEVICE_FINGERPRINT") {
		t.Errorf("error = %q, want it to name the enabled toggle", err.Error())
	}
}

func TestLoad_AuthTogglesAllowedOutsideProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")
	os.Setenv("APP_ENV", "staging")
	os.Setenv("AUTH_DISABLE_PASSWORD_VERIFICATION", "true")
	os.Setenv("AUTH_DISABLE_EMAIL_VERIFICATION", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.DisablePasswordVerification || !cfg.DisableEmailVerification {
		t.Error("toggles should be set from env")
	}
	if got := cfg.EnabledAuthBypasses(); len(got) != 2 {
		t.Errorf("EnabledAuthBypasses = %v, want 2 entries", got)
	}
}

func TestDurations_InvalidFallBackToDefaults(t *testing.T) {
	cfg := &Config{
		JWTAccessTTL:         "invalid",
		JWTRefreshTTL:        "-1h",
		SessionLifetime:      "",
		SessionTouchInterval: "abc",
		LoginLockoutWindow:   "0s",
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL = %v", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 168*time.Hour {
		t.Errorf("RefreshTTL = %v", cfg.RefreshTTL())
	}
	if cfg.SessionTTL() != 168*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL())
	}
	if cfg.TouchInterval() != time.Minute {
		t.Errorf("TouchInterval = %v", cfg.TouchInterval())
	}
	if cfg.LockoutWindow() != 15*time.Minute {
		t.Errorf("LockoutWindow = %v", cfg.LockoutWindow())
	}
}

func TestAuditKafkaBrokersList(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "localhost:9092", []string{"localhost:9092"}},
		{"spaces and blanks", " a:1 , ,b:2 ", []string{"a:1", "b:2"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{AuditKafkaBrokers: tc.in}
			got := cfg.AuditKafkaBrokersList()
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
	var nilCfg *Config
	if nilCfg.AuditKafkaBrokersList() != nil {
		t.Error("nil config should return nil list")
	}
}
