package repository

import (
	"context"
	"sync"
	"time"

	"marketplace-portal/backend/internal/ratelimit/domain"
)

// MemoryRepository is an in-process Repository for tests and local tooling.
type MemoryRepository struct {
	mu       sync.Mutex
	attempts []*domain.LoginAttempt
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Append(ctx context.Context, a *domain.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.attempts = append(m.attempts, &cp)
	return nil
}

func (m *MemoryRepository) CountFailuresSince(ctx context.Context, email string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := since
	for _, a := range m.attempts {
		if a.Email == email && a.Success && a.AttemptedAt.After(cutoff) {
			cutoff = a.AttemptedAt
		}
	}
	n := 0
	for _, a := range m.attempts {
		if a.Email == email && a.CountsTowardLockout() && a.AttemptedAt.After(cutoff) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.LoginAttempt
	for i := len(m.attempts) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if a := m.attempts[i]; a.Email == email {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// All returns a copy of every recorded attempt in insertion order.
func (m *MemoryRepository) All() []*domain.LoginAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.LoginAttempt, len(m.attempts))
	for i, a := range m.attempts {
		cp := *a
		out[i] = &cp
	}
	return out
}
