package authconfig

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"marketplace-portal/backend/internal/config"
)

func TestZeroValueRunsEveryCheck(t *testing.T) {
	var tg Toggles
	if tg.PasswordVerificationDisabled() || tg.AccountStatusCheckDisabled() || tg.DeviceFingerprintDisabled() ||
		tg.IPMismatchCheckDisabled() || tg.EmailVerificationDisabled() {
		t.Error("zero Toggles should not disable any check")
	}
	if len(tg.Enabled()) != 0 {
		t.Errorf("Enabled = %v, want none", tg.Enabled())
	}
}

func TestNew_IndependentToggles(t *testing.T) {
	tg := New(DisableDeviceFingerprint())
	if !tg.DeviceFingerprintDisabled() {
		t.Error("DeviceFingerprintDisabled = false, want true")
	}
	if tg.IPMismatchCheckDisabled() || tg.PasswordVerificationDisabled() {
		t.Error("other toggles should stay off")
	}
	if got := tg.Enabled(); len(got) != 1 || got[0] != "deviceFingerprintDisabled" {
		t.Errorf("Enabled = %v, want [deviceFingerprintDisabled]", got)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		DisablePasswordVerification: true,
		DisableAccountStatusCheck:   true,
		DisableDeviceFingerprint:    true,
		DisableIPMismatchCheck:      true,
		DisableEmailVerification:    true,
	}
	tg := FromConfig(cfg)
	if len(tg.Enabled()) != 5 {
		t.Errorf("Enabled = %v, want all five", tg.Enabled())
	}
	// Later config changes do not reach the toggles already built.
	cfg.DisablePasswordVerification = false
	if !tg.PasswordVerificationDisabled() {
		t.Error("toggles should be a snapshot of config")
	}
	if len(FromConfig(nil).Enabled()) != 0 {
		t.Error("nil config should produce zero toggles")
	}
}

func TestLogWarnings(t *testing.T) {
	var buf bytes.Buffer
	New().LogWarnings(zerolog.New(&buf))
	if buf.Len() != 0 {
		t.Errorf("no toggles should log nothing, got %q", buf.String())
	}
	New(DisableEmailVerification()).LogWarnings(zerolog.New(&buf))
	if !strings.Contains(buf.String(), "emailVerificationDisabled") {
		t.Errorf("warning = %q, want it to name the toggle", buf.String())
	}
}
