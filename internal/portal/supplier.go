package portal

import "marketplace-portal/backend/internal/portal/domain"

// SupplierPolicy governs vendor accounts. Tokens carry the profile id as supplierId.
type SupplierPolicy struct {
	basePolicy
}

func NewSupplierPolicy(opts Options) *SupplierPolicy {
	return &SupplierPolicy{basePolicy: newBase(domain.Supplier, opts)}
}

func (s *SupplierPolicy) ScopedIDs(p *domain.Profile) ScopedIDs {
	return ScopedIDs{SupplierID: p.ID}
}
