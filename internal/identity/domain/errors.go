// Package domain defines the failure kinds the authentication protocols return. Each kind carries a generic
// caller-facing message; the specific internal reason is logged and written to the login attempt trail,
// never returned.
package domain

import "errors"

// Kind classifies an authentication failure.
type Kind string

const (
	KindInvalidCredentials      Kind = "INVALID_CREDENTIALS"
	KindPortalMismatch          Kind = "PORTAL_MISMATCH"
	KindEmailNotVerified        Kind = "EMAIL_NOT_VERIFIED"
	KindAccountPending          Kind = "ACCOUNT_PENDING"
	KindAccountSuspended        Kind = "ACCOUNT_SUSPENDED"
	KindAccountDeactivated      Kind = "ACCOUNT_DEACTIVATED"
	KindDeviceNotBound          Kind = "DEVICE_NOT_BOUND"
	KindDeviceMismatch          Kind = "DEVICE_MISMATCH"
	KindRateLimited             Kind = "RATE_LIMITED"
	KindInvalidOrExpiredToken   Kind = "INVALID_OR_EXPIRED_TOKEN"
	KindSessionRevokedOrExpired Kind = "SESSION_REVOKED_OR_EXPIRED"
	KindUnauthenticated         Kind = "UNAUTHENTICATED"
	KindInvalidInput            Kind = "INVALID_INPUT"
	KindEmailTaken              Kind = "EMAIL_TAKEN"
	KindRegistrationClosed      Kind = "REGISTRATION_CLOSED"
)

// Error is an authentication failure of a known kind. Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind, so errors.Is(err, ErrDeviceMismatch) holds for wrapped copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidCredentials      = &Error{KindInvalidCredentials, "invalid email or password"}
	ErrPortalMismatch          = &Error{KindPortalMismatch, "this account is not registered for this portal"}
	ErrEmailNotVerified        = &Error{KindEmailNotVerified, "email address has not been verified"}
	ErrAccountPending          = &Error{KindAccountPending, "account is pending approval"}
	ErrAccountSuspended        = &Error{KindAccountSuspended, "account is suspended"}
	ErrAccountDeactivated      = &Error{KindAccountDeactivated, "account is deactivated"}
	ErrDeviceNotBound          = &Error{KindDeviceNotBound, "no active device binding found"}
	ErrDeviceMismatch          = &Error{KindDeviceMismatch, "this device is not authorized for the account"}
	ErrRateLimited             = &Error{KindRateLimited, "too many failed login attempts; try again later"}
	ErrInvalidOrExpiredToken   = &Error{KindInvalidOrExpiredToken, "invalid or expired token"}
	ErrSessionRevokedOrExpired = &Error{KindSessionRevokedOrExpired, "session is no longer valid"}
	ErrUnauthenticated         = &Error{KindUnauthenticated, "unauthenticated"}
	ErrInvalidInput            = &Error{KindInvalidInput, "invalid request"}
	ErrEmailTaken              = &Error{KindEmailTaken, "email is already registered"}
	ErrRegistrationClosed      = &Error{KindRegistrationClosed, "registration is not available on this portal"}
)

// KindOf returns the kind of the first *Error in err's chain, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// InvalidInput returns an ErrInvalidInput-kind error with a specific message.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}
