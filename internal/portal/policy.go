// Package portal holds the per-portal rules the shared login protocol is parameterized by: how a profile is
// found for an account, which statuses may log in, and whether a missing device binding is created on first
// login.
package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	accountdomain "marketplace-portal/backend/internal/account/domain"
	"marketplace-portal/backend/internal/policy/engine"
	"marketplace-portal/backend/internal/portal/domain"
	"marketplace-portal/backend/internal/portal/repository"
)

// ErrRegistrationClosed is returned by CreateProfile for portals whose profiles are provisioned by staff.
var ErrRegistrationClosed = errors.New("self-registration is not available on this portal")

// RoleAdmin is the account role required to hold an admin profile.
const RoleAdmin = "admin"

// ScopedIDs are the portal-scoped ids embedded in tokens next to the profile id.
type ScopedIDs struct {
	CustomerID string
	SupplierID string
}

// Policy is what differs between portals in the login, refresh and registration protocols.
type Policy interface {
	Type() domain.Type
	// Profiles is the portal's profile store.
	Profiles() repository.Repository
	// FindProfile returns the account's profile on this portal, or nil when it has none.
	FindProfile(ctx context.Context, acct *accountdomain.Account) (*domain.Profile, error)
	// AllowsRegistration reports whether accounts may sign themselves up on this portal.
	AllowsRegistration() bool
	// CreateProfile provisions a new profile for a self-registering account.
	CreateProfile(ctx context.Context, acct *accountdomain.Account, displayName string) (*domain.Profile, error)
	// CheckStatus decides whether the account and profile statuses permit authentication.
	CheckStatus(ctx context.Context, acct *accountdomain.Account, p *domain.Profile) (engine.StatusDecision, error)
	// LazyDeviceBinding reports whether a login without a primary binding binds the presented device
	// instead of failing.
	LazyDeviceBinding() bool
	// ScopedIDs returns the portal-scoped ids for tokens.
	ScopedIDs(p *domain.Profile) ScopedIDs
}

// Options configure a Policy.
type Options struct {
	Profiles repository.Repository
	Status   engine.StatusEvaluator
	// LazyDeviceBinding overrides the portal's binding behaviour.
	LazyDeviceBinding bool
}

type basePolicy struct {
	portal   domain.Type
	profiles repository.Repository
	status   engine.StatusEvaluator
	lazy     bool
	now      func() time.Time
}

func newBase(portal domain.Type, opts Options) basePolicy {
	return basePolicy{
		portal:   portal,
		profiles: opts.Profiles,
		status:   opts.Status,
		lazy:     opts.LazyDeviceBinding,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (b *basePolicy) Type() domain.Type               { return b.portal }
func (b *basePolicy) Profiles() repository.Repository { return b.profiles }
func (b *basePolicy) LazyDeviceBinding() bool         { return b.lazy }
func (b *basePolicy) AllowsRegistration() bool        { return true }

func (b *basePolicy) FindProfile(ctx context.Context, acct *accountdomain.Account) (*domain.Profile, error) {
	p, err := b.profiles.GetByAccountID(ctx, acct.ID)
	if err != nil {
		return nil, fmt.Errorf("get %s profile: %w", b.portal, err)
	}
	return p, nil
}

func (b *basePolicy) CreateProfile(ctx context.Context, acct *accountdomain.Account, displayName string) (*domain.Profile, error) {
	p := &domain.Profile{
		ID:          uuid.New().String(),
		AccountID:   acct.ID,
		Portal:      b.portal,
		Status:      domain.StatusPending,
		DisplayName: displayName,
		CreatedAt:   b.now(),
	}
	if err := b.profiles.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create %s profile: %w", b.portal, err)
	}
	return p, nil
}

func (b *basePolicy) CheckStatus(ctx context.Context, acct *accountdomain.Account, p *domain.Profile) (engine.StatusDecision, error) {
	return b.status.EvaluateStatus(ctx, engine.StatusInput{
		Portal:        string(b.portal),
		AccountStatus: acct.Status,
		ProfileStatus: p.Status,
	})
}

func (b *basePolicy) ScopedIDs(p *domain.Profile) ScopedIDs {
	return ScopedIDs{}
}

// For returns the policy for portal t.
func For(t domain.Type, opts Options) (Policy, error) {
	switch t {
	case domain.Admin:
		return NewAdminPolicy(opts), nil
	case domain.Customer:
		return NewCustomerPolicy(opts), nil
	case domain.Supplier:
		return NewSupplierPolicy(opts), nil
	case domain.FieldFlow:
		return NewFieldFlowPolicy(opts), nil
	}
	return nil, fmt.Errorf("unknown portal %q", t)
}
