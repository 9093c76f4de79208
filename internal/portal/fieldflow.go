package portal

import (
	"context"

	accountdomain "marketplace-portal/backend/internal/account/domain"
	"marketplace-portal/backend/internal/portal/domain"
)

// FieldFlowPolicy governs field representatives. Reps are invited by staff, so registration is closed.
type FieldFlowPolicy struct {
	basePolicy
}

func NewFieldFlowPolicy(opts Options) *FieldFlowPolicy {
	return &FieldFlowPolicy{basePolicy: newBase(domain.FieldFlow, opts)}
}

func (f *FieldFlowPolicy) AllowsRegistration() bool { return false }

func (f *FieldFlowPolicy) CreateProfile(ctx context.Context, acct *accountdomain.Account, displayName string) (*domain.Profile, error) {
	return nil, ErrRegistrationClosed
}
