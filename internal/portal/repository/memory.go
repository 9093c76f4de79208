package repository

import (
	"context"
	"sync"
	"time"

	"marketplace-portal/backend/internal/portal/domain"
)

// MemoryRepository is an in-process Repository for tests and local tooling.
type MemoryRepository struct {
	mu       sync.Mutex
	portal   domain.Type
	profiles map[string]*domain.Profile
}

// NewMemoryRepository returns an empty MemoryRepository for portal.
func NewMemoryRepository(portal domain.Type) *MemoryRepository {
	return &MemoryRepository{portal: portal, profiles: make(map[string]*domain.Profile)}
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.AccountID == accountID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) Create(ctx context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Portal = m.portal
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *MemoryRepository) UpdateStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		p.Status = status
	}
	return nil
}
