package repository

import (
	"context"
	"sync"
	"time"

	"marketplace-portal/backend/internal/device/domain"
)

// MemoryRepository is an in-process Repository for tests and local tooling.
type MemoryRepository struct {
	mu       sync.Mutex
	bindings []*domain.Binding
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) ListByProfile(ctx context.Context, profileID string) ([]*domain.Binding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Binding
	for i := len(m.bindings) - 1; i >= 0; i-- {
		if b := m.bindings[i]; b.ProfileID == profileID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) GetActiveByFingerprint(ctx context.Context, profileID, fingerprint string) (*domain.Binding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bindings {
		if b.ProfileID == profileID && b.IsActive && b.DeviceFingerprint == fingerprint {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) Create(ctx context.Context, b *domain.Binding) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.IsPrimary {
		for _, existing := range m.bindings {
			if existing.ProfileID == b.ProfileID && existing.IsActive && existing.IsPrimary {
				return false, nil
			}
		}
	}
	b.IsActive = true
	cp := *b
	m.bindings = append(m.bindings, &cp)
	return true, nil
}

func (m *MemoryRepository) DeactivateAll(ctx context.Context, profileID, by, reason string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bindings {
		if b.ProfileID == profileID && b.IsActive {
			t := at
			b.IsActive = false
			b.DeactivatedAt = &t
			b.DeactivatedBy = by
			b.DeactivationReason = reason
			n++
		}
	}
	return n, nil
}
