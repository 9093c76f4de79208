package portal

import (
	"context"

	accountdomain "marketplace-portal/backend/internal/account/domain"
	"marketplace-portal/backend/internal/portal/domain"
)

// AdminPolicy governs the staff back office. Admin profiles are provisioned, never self-registered, and are
// only usable by accounts that still carry the admin role.
type AdminPolicy struct {
	basePolicy
}

func NewAdminPolicy(opts Options) *AdminPolicy {
	return &AdminPolicy{basePolicy: newBase(domain.Admin, opts)}
}

// FindProfile returns nil when the account has lost the admin role, so the login fails as a portal mismatch.
func (a *AdminPolicy) FindProfile(ctx context.Context, acct *accountdomain.Account) (*domain.Profile, error) {
	if !acct.HasRole(RoleAdmin) {
		return nil, nil
	}
	return a.basePolicy.FindProfile(ctx, acct)
}

func (a *AdminPolicy) AllowsRegistration() bool { return false }

func (a *AdminPolicy) CreateProfile(ctx context.Context, acct *accountdomain.Account, displayName string) (*domain.Profile, error) {
	return nil, ErrRegistrationClosed
}
