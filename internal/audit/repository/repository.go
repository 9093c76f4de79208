package repository

import (
	"context"

	"marketplace-portal/backend/internal/audit/domain"
)

// Repository defines persistence for audit events. The kernel only appends; ListByEntity serves tooling and tests.
type Repository interface {
	Create(ctx context.Context, e *domain.Event) error
	ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*domain.Event, error)
}
