// Package authconfig holds the named switches that skip individual login checks in test and staging
// environments. Toggles are built once at startup and passed by value; nothing mutates them afterwards.
package authconfig

import (
	"github.com/rs/zerolog"

	"marketplace-portal/backend/internal/config"
)

// Toggles names the login checks that can be skipped. The zero value runs every check.
// A skipped check is not evaluated at all, so turning one off never loosens another.
type Toggles struct {
	passwordVerificationDisabled bool
	accountStatusCheckDisabled   bool
	deviceFingerprintDisabled    bool
	ipMismatchCheckDisabled      bool
	emailVerificationDisabled    bool
}

// Option sets one toggle when building Toggles.
type Option func(*Toggles)

func DisablePasswordVerification() Option {
	return func(t *Toggles) { t.passwordVerificationDisabled = true }
}

func DisableAccountStatusCheck() Option {
	return func(t *Toggles) { t.accountStatusCheckDisabled = true }
}

func DisableDeviceFingerprint() Option {
	return func(t *Toggles) { t.deviceFingerprintDisabled = true }
}

func DisableIPMismatchCheck() Option {
	return func(t *Toggles) { t.ipMismatchCheckDisabled = true }
}

func DisableEmailVerification() Option {
	return func(t *Toggles) { t.emailVerificationDisabled = true }
}

// New builds Toggles from opts. Tests use it; the server uses FromConfig.
func New(opts ...Option) Toggles {
	var t Toggles
	for _, o := range opts {
		o(&t)
	}
	return t
}

// FromConfig builds Toggles from loaded config. Config.Load already rejects enabled toggles in production.
func FromConfig(cfg *config.Config) Toggles {
	if cfg == nil {
		return Toggles{}
	}
	return Toggles{
		passwordVerificationDisabled: cfg.DisablePasswordVerification,
		accountStatusCheckDisabled:   cfg.DisableAccountStatusCheck,
		deviceFingerprintDisabled:    cfg.DisableDeviceFingerprint,
		ipMismatchCheckDisabled:      cfg.DisableIPMismatchCheck,
		emailVerificationDisabled:    cfg.DisableEmailVerification,
	}
}

func (t Toggles) PasswordVerificationDisabled() bool { return t.passwordVerificationDisabled }
func (t Toggles) AccountStatusCheckDisabled() bool   { return t.accountStatusCheckDisabled }
func (t Toggles) DeviceFingerprintDisabled() bool    { return t.deviceFingerprintDisabled }
func (t Toggles) IPMismatchCheckDisabled() bool      { return t.ipMismatchCheckDisabled }
func (t Toggles) EmailVerificationDisabled() bool    { return t.emailVerificationDisabled }

// Enabled lists the names of the toggles that are switched on.
func (t Toggles) Enabled() []string {
	var out []string
	if t.passwordVerificationDisabled {
		out = append(out, "passwordVerificationDisabled")
	}
	if t.accountStatusCheckDisabled {
		out = append(out, "accountStatusCheckDisabled")
	}
	if t.deviceFingerprintDisabled {
		out = append(out, "deviceFingerprintDisabled")
	}
	if t.ipMismatchCheckDisabled {
		out = append(out, "ipMismatchCheckDisabled")
	}
	if t.emailVerificationDisabled {
		out = append(out, "emailVerificationDisabled")
	}
	return out
}

// LogWarnings writes one warning listing the enabled toggles. It logs nothing when all checks run.
func (t Toggles) LogWarnings(log zerolog.Logger) {
	enabled := t.Enabled()
	if len(enabled) == 0 {
		return
	}
	log.Warn().Strs("toggles", enabled).Msg("auth checks disabled; do not run this configuration in production")
}
