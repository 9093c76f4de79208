package repository

import (
	"context"
	"time"

	"marketplace-portal/backend/internal/ratelimit/domain"
)

// Repository is the append-only login attempt trail for one portal.
type Repository interface {
	Append(ctx context.Context, a *domain.LoginAttempt) error
	// CountFailuresSince counts failed attempts for email that count toward lockout, made after since and after
	// the most recent successful attempt.
	CountFailuresSince(ctx context.Context, email string, since time.Time) (int, error)
	// ListByEmail returns the most recent attempts for email, newest first.
	ListByEmail(ctx context.Context, email string, limit int) ([]*domain.LoginAttempt, error)
}
