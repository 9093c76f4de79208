package repository

import (
	"context"
	"maps"
	"sync"

	"marketplace-portal/backend/internal/audit/domain"
)

// MemoryRepository is an in-process Repository for tests and local tooling.
type MemoryRepository struct {
	mu     sync.Mutex
	events []*domain.Event
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(ctx context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	cp.NewValues = maps.Clone(e.NewValues)
	m.events = append(m.events, &cp)
	return nil
}

func (m *MemoryRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Event
	for i := len(m.events) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if e := m.events[i]; e.EntityType == entityType && e.EntityID == entityID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Actions returns the action of every stored event in insertion order.
func (m *MemoryRepository) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Action
	}
	return out
}

// All returns a copy of every stored event in insertion order.
func (m *MemoryRepository) All() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Event, len(m.events))
	for i, e := range m.events {
		cp := *e
		out[i] = &cp
	}
	return out
}
