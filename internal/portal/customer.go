package portal

import "marketplace-portal/backend/internal/portal/domain"

// CustomerPolicy governs buyer accounts. Tokens carry the profile id as customerId.
type CustomerPolicy struct {
	basePolicy
}

func NewCustomerPolicy(opts Options) *CustomerPolicy {
	return &CustomerPolicy{basePolicy: newBase(domain.Customer, opts)}
}

func (c *CustomerPolicy) ScopedIDs(p *domain.Profile) ScopedIDs {
	return ScopedIDs{CustomerID: p.ID}
}
