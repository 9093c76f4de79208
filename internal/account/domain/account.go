package domain

import (
	"slices"
	"strings"
	"time"
)

// Account is the portal-independent credential record: email, password hash and role set.
type Account struct {
	ID            string
	Email         string
	PasswordHash  string
	PasswordSalt  string
	Roles         []string
	Status        string
	EmailVerified bool
	CreatedAt     time.Time
}

// HasRole reports whether the account carries role.
func (a *Account) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// NormalizeEmail lowercases and trims an email so lookups and rate-limit keys are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
