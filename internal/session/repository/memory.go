package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"marketplace-portal/backend/internal/session/domain"
)

// MemoryRepository is an in-process Repository for tests and local tooling. It enforces the same
// one-active-session-per-profile rule as the Postgres partial unique index.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions []*domain.Session
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(s)
}

func (m *MemoryRepository) insertLocked(s *domain.Session) error {
	for _, existing := range m.sessions {
		if existing.IsActive && existing.ProfileID == s.ProfileID {
			return ErrActiveSessionExists
		}
	}
	cp := *s
	cp.IsActive = true
	m.sessions = append(m.sessions, &cp)
	return nil
}

func (m *MemoryRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.byTokenLocked(token); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) byTokenLocked(token string) *domain.Session {
	for _, s := range m.sessions {
		if s.SessionToken == token {
			return s
		}
	}
	return nil
}

func (m *MemoryRepository) ListActiveByProfile(ctx context.Context, profileID string) ([]*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.IsActive && s.ProfileID == profileID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// All returns a copy of every session for the profile, active or not, in insertion order.
func (m *MemoryRepository) All(profileID string) []*domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.ProfileID == profileID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

func (m *MemoryRepository) Invalidate(ctx context.Context, token string, reason domain.InvalidationReason, at time.Time) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.byTokenLocked(token)
	if s == nil || !s.IsActive {
		return nil, nil
	}
	deactivate(s, reason, at)
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) InvalidateAllByProfile(ctx context.Context, profileID string, reason domain.InvalidationReason, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidateAllLocked(profileID, reason, at), nil
}

func (m *MemoryRepository) invalidateAllLocked(profileID string, reason domain.InvalidationReason, at time.Time) int64 {
	var n int64
	for _, s := range m.sessions {
		if s.IsActive && s.ProfileID == profileID {
			deactivate(s, reason, at)
			n++
		}
	}
	return n
}

func (m *MemoryRepository) Replace(ctx context.Context, s *domain.Session, reason domain.InvalidationReason, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.invalidateAllLocked(s.ProfileID, reason, at)
	return n, m.insertLocked(s)
}

func (m *MemoryRepository) Expire(ctx context.Context, token string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.byTokenLocked(token)
	if s == nil || !s.IsActive || !s.Expired(now) {
		return false, nil
	}
	deactivate(s, domain.ReasonExpired, now)
	return true, nil
}

func (m *MemoryRepository) Touch(ctx context.Context, token string, now, staleBefore time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.byTokenLocked(token); s != nil && s.IsActive && s.LastActivityAt.Before(staleBefore) {
		s.LastActivityAt = now
	}
	return nil
}

func (m *MemoryRepository) Rotate(ctx context.Context, profileID, previousToken, newToken, refreshHint string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.byTokenLocked(previousToken)
	if s == nil || s.ProfileID != profileID || !s.Usable(now) {
		return false, nil
	}
	s.SessionToken = newToken
	s.RefreshTokenHint = refreshHint
	s.LastActivityAt = now
	return true, nil
}

func (m *MemoryRepository) SetRefreshHint(ctx context.Context, token, hint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.byTokenLocked(token); s != nil && s.IsActive {
		s.RefreshTokenHint = hint
	}
	return nil
}

func deactivate(s *domain.Session, reason domain.InvalidationReason, at time.Time) {
	t := at
	s.IsActive = false
	s.InvalidatedAt = &t
	s.InvalidationReason = reason
}
