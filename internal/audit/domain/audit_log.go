package domain

import "time"

// Actions written by the authentication kernel.
const (
	ActionLoginSuccess      = "login_success"
	ActionLoginFailure      = "login_failure"
	ActionDeviceMismatch    = "device_mismatch"
	ActionDeviceBound       = "device_bound"
	ActionRateLimited       = "login_rate_limited"
	ActionLogout            = "logout"
	ActionTokenRefreshed    = "token_refreshed"
	ActionAccountRegistered = "account_registered"
	ActionEmailVerified     = "email_verified"
	ActionDeviceReset       = "device_reset"
	ActionAccessSuspended   = "access_suspended"
	ActionSessionsRevoked   = "sessions_revoked"
)

// Entity types.
const (
	EntityAccount = "account"
	EntityProfile = "profile"
	EntitySession = "session"
	EntityRPC     = "rpc"
)

// Event is one append-only audit record.
type Event struct {
	ID         string
	Portal     string
	EntityType string
	EntityID   string
	Action     string
	NewValues  map[string]any
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}
