// Package service resolves and compares device-fingerprint bindings. It never mutates bindings; creating and
// deactivating them is left to the login and admin flows that own that policy.
package service

import (
	"context"
	"fmt"

	"marketplace-portal/backend/internal/device/domain"
	"marketplace-portal/backend/internal/device/repository"
	"marketplace-portal/backend/internal/security"
)

// Service looks up device bindings for one portal.
type Service struct {
	repo repository.Repository
}

// NewService returns a device binding service.
func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// FindPrimaryActiveBinding returns the active primary binding in bindings, or nil.
func FindPrimaryActiveBinding(bindings []*domain.Binding) *domain.Binding {
	for _, b := range bindings {
		if b != nil && b.IsActive && b.IsPrimary {
			return b
		}
	}
	return nil
}

// FindPrimaryActiveBinding returns the active primary binding in bindings, or nil.
func (s *Service) FindPrimaryActiveBinding(bindings []*domain.Binding) *domain.Binding {
	return FindPrimaryActiveBinding(bindings)
}

// FindBinding returns the profile's active binding for fingerprint, or nil.
func (s *Service) FindBinding(ctx context.Context, profileID, fingerprint string) (*domain.Binding, error) {
	b, err := s.repo.GetActiveByFingerprint(ctx, profileID, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("find binding: %w", err)
	}
	return b, nil
}

// PrimaryBinding loads the profile's bindings and returns the active primary one, or nil.
func (s *Service) PrimaryBinding(ctx context.Context, profileID string) (*domain.Binding, error) {
	bindings, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	return FindPrimaryActiveBinding(bindings), nil
}

// Matches reports whether fingerprint is the one bound in b, comparing in constant time.
func Matches(b *domain.Binding, fingerprint string) bool {
	if b == nil || fingerprint == "" {
		return false
	}
	return security.ConstantTimeEqual(b.DeviceFingerprint, fingerprint)
}
