package domain

import "time"

// InvalidationReason records why a session stopped being active.
type InvalidationReason string

const (
	ReasonLogout           InvalidationReason = "LOGOUT"
	ReasonNewLogin         InvalidationReason = "NEW_LOGIN"
	ReasonExpired          InvalidationReason = "EXPIRED"
	ReasonAdminReset       InvalidationReason = "ADMIN_RESET"
	ReasonDeviceReset      InvalidationReason = "DEVICE_RESET"
	ReasonAccountSuspended InvalidationReason = "ACCOUNT_SUSPENDED"
)

// Valid reports whether r is a known reason.
func (r InvalidationReason) Valid() bool {
	switch r {
	case ReasonLogout, ReasonNewLogin, ReasonExpired, ReasonAdminReset, ReasonDeviceReset, ReasonAccountSuspended:
		return true
	}
	return false
}

// Session is a server-side login record for a portal profile. SessionToken is the revocation handle embedded
// in issued JWTs. Rows are never deleted.
type Session struct {
	ID                 string
	ProfileID          string
	SessionToken       string
	RefreshTokenHint   string // SHA-256 of the last refresh token issued; empty until tokens are issued
	DeviceFingerprint  string
	IPAddress          string
	UserAgent          string
	IsActive           bool
	CreatedAt          time.Time
	ExpiresAt          time.Time
	LastActivityAt     time.Time
	InvalidatedAt      *time.Time // nil while active
	InvalidationReason InvalidationReason
}

// Expired reports whether the session's lifetime has ended at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Usable reports whether the session is active and unexpired at now.
func (s *Session) Usable(now time.Time) bool {
	return s.IsActive && !s.Expired(now)
}
