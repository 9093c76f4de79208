package repository

import (
	"context"
	"sync"
	"time"

	"marketplace-portal/backend/internal/account/domain"
)

// MemoryRepository is an in-process Repository for tests and local tooling.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*domain.Account)}
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := domain.NormalizeEmail(email)
	for _, a := range m.accounts {
		if domain.NormalizeEmail(a.Email) == want {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) Create(ctx context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := domain.NormalizeEmail(a.Email)
	for _, existing := range m.accounts {
		if domain.NormalizeEmail(existing.Email) == want {
			return ErrEmailTaken
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *MemoryRepository) MarkEmailVerified(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		a.EmailVerified = true
	}
	return nil
}
