package repository

import (
	"context"
	"errors"

	"marketplace-portal/backend/internal/account/domain"
)

// ErrEmailTaken is returned by Create when another account already uses the email (case-insensitive).
var ErrEmailTaken = errors.New("email already registered")

// Repository defines persistence for accounts. Lookups return (nil, nil) when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	MarkEmailVerified(ctx context.Context, id string) error
}
