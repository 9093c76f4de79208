package repository

import (
	"context"

	"marketplace-portal/backend/internal/portal/domain"
)

// Repository defines persistence for one portal's profiles. Lookups return (nil, nil) when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByAccountID(ctx context.Context, accountID string) (*domain.Profile, error)
	Create(ctx context.Context, p *domain.Profile) error
	UpdateStatus(ctx context.Context, id, status string) error
}
