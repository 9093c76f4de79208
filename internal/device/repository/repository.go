package repository

import (
	"context"
	"time"

	"marketplace-portal/backend/internal/device/domain"
)

// Repository defines persistence for one portal's device bindings. Lookups return (nil, nil) when no row matches.
type Repository interface {
	ListByProfile(ctx context.Context, profileID string) ([]*domain.Binding, error)
	// GetActiveByFingerprint returns the active binding of the profile for fingerprint.
	GetActiveByFingerprint(ctx context.Context, profileID, fingerprint string) (*domain.Binding, error)
	// Create inserts b. For a primary binding it reports false, without error, when the profile already has an
	// active primary binding.
	Create(ctx context.Context, b *domain.Binding) (bool, error)
	// DeactivateAll deactivates every active binding of the profile and returns how many changed.
	DeactivateAll(ctx context.Context, profileID, by, reason string, at time.Time) (int64, error)
}
