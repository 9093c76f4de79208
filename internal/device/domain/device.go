package domain

import "time"

// Binding records that a device fingerprint is authorized for a profile. At most one active primary binding
// exists per profile.
type Binding struct {
	ID                 string
	ProfileID          string
	DeviceFingerprint  string
	RegisteredIP       string
	IsPrimary          bool
	IsActive           bool
	CreatedAt          time.Time
	DeactivatedAt      *time.Time
	DeactivatedBy      string
	DeactivationReason string
}

// Deactivation reasons written by admin flows.
const (
	DeactivatedDeviceReset      = "DEVICE_RESET"
	DeactivatedAccountSuspended = "ACCOUNT_SUSPENDED"
)
