package repository

import (
	"context"
	"errors"
	"time"

	"marketplace-portal/backend/internal/session/domain"
)

// ErrActiveSessionExists is returned by Create when the profile already has an active session.
var ErrActiveSessionExists = errors.New("profile already has an active session")

// Repository defines persistence for one portal's sessions. Every mutation is conditional on the row still
// being active, so a revoked session can never be revived. Lookups return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	ListActiveByProfile(ctx context.Context, profileID string) ([]*domain.Session, error)
	// Invalidate deactivates the active session with token and returns the updated row, or nil if no active
	// session matched.
	Invalidate(ctx context.Context, token string, reason domain.InvalidationReason, at time.Time) (*domain.Session, error)
	// InvalidateAllByProfile deactivates every active session of the profile and returns how many it changed.
	InvalidateAllByProfile(ctx context.Context, profileID string, reason domain.InvalidationReason, at time.Time) (int64, error)
	// Replace invalidates the profile's active sessions and inserts s as one atomic step, serialized per profile.
	Replace(ctx context.Context, s *domain.Session, reason domain.InvalidationReason, at time.Time) (int64, error)
	// Expire flips an active, expired session to inactive with reason EXPIRED. It reports whether this call
	// performed the flip.
	Expire(ctx context.Context, token string, now time.Time) (bool, error)
	// Touch sets last_activity_at to now when the stored value is older than staleBefore.
	Touch(ctx context.Context, token string, now, staleBefore time.Time) error
	// Rotate swaps the session token of the profile's active, unexpired session identified by previousToken.
	// It reports false when no such session exists.
	Rotate(ctx context.Context, profileID, previousToken, newToken, refreshHint string, now time.Time) (bool, error)
	SetRefreshHint(ctx context.Context, token, hint string) error
}
