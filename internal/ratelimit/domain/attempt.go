package domain

import "time"

// FailureReason is the internal reason recorded for a failed login attempt.
type FailureReason string

const (
	FailureInvalidCredentials FailureReason = "INVALID_CREDENTIALS"
	FailurePortalMismatch     FailureReason = "PORTAL_MISMATCH"
	FailureEmailNotVerified   FailureReason = "EMAIL_NOT_VERIFIED"
	FailureAccountPending     FailureReason = "ACCOUNT_PENDING"
	FailureAccountSuspended   FailureReason = "ACCOUNT_SUSPENDED"
	FailureAccountDeactivated FailureReason = "ACCOUNT_DEACTIVATED"
	FailureDeviceNotBound     FailureReason = "DEVICE_NOT_BOUND"
	FailureDeviceMismatch     FailureReason = "DEVICE_MISMATCH"
	FailureRateLimited        FailureReason = "RATE_LIMITED"
)

// LoginAttempt is one row of the append-only login audit trail.
type LoginAttempt struct {
	ID                string
	ProfileID         string // empty until the account is resolved
	Email             string
	Success           bool
	FailureReason     FailureReason // empty on success
	DeviceFingerprint string
	IPAddress         string
	UserAgent         string
	IPMismatchWarning bool
	AttemptedAt       time.Time
}

// CountsTowardLockout reports whether an attempt is a failure that feeds the lockout counter. Rejections
// issued by the limiter itself do not extend the lockout.
func (a *LoginAttempt) CountsTowardLockout() bool {
	return !a.Success && a.FailureReason != FailureRateLimited
}
