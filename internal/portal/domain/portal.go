package domain

import (
	"strings"
	"time"
)

// Type identifies one of the independent authentication contexts.
type Type string

const (
	Admin     Type = "admin"
	Customer  Type = "customer"
	Supplier  Type = "supplier"
	FieldFlow Type = "fieldflow"
)

// All lists every portal in a stable order.
func All() []Type {
	return []Type{Admin, Customer, Supplier, FieldFlow}
}

// Valid reports whether t is a known portal.
func (t Type) Valid() bool {
	switch t {
	case Admin, Customer, Supplier, FieldFlow:
		return true
	}
	return false
}

// ParseType returns the portal named by s (case-insensitive).
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Table returns the name of the portal's table with the given suffix, e.g. Customer.Table("sessions") is
// "customer_sessions". Only valid portals produce a name; table names are never built from request input.
func (t Type) Table(suffix string) string {
	if !t.Valid() {
		return ""
	}
	return string(t) + "_" + suffix
}

// Profile statuses shared by all portals. Portals may use additional values; the account-status policy
// decides what each one means.
const (
	StatusPending     = "PENDING"
	StatusActive      = "ACTIVE"
	StatusSuspended   = "SUSPENDED"
	StatusDeactivated = "DEACTIVATED"
)

// Profile is the portal-specific identity an account logs in as. Sessions, device bindings and login attempts
// are owned by a profile, not by the raw account.
type Profile struct {
	ID          string
	AccountID   string
	Portal      Type
	Status      string
	DisplayName string
	CreatedAt   time.Time
}
