package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"marketplace-portal/backend/internal/audit/domain"
)

// PostgresRepository stores events in audit_logs.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts e. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Event) error {
	var values []byte
	if len(e.NewValues) > 0 {
		b, err := json.Marshal(e.NewValues)
		if err != nil {
			return fmt.Errorf("marshal audit values: %w", err)
		}
		values = b
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, portal, entity_type, entity_id, action, new_values, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Portal, e.EntityType, e.EntityID, e.Action, values, e.IPAddress, e.UserAgent, e.CreatedAt)
	return err
}

// ListByEntity returns the latest events for an entity, newest first.
func (r *PostgresRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, portal, entity_type, entity_id, action, new_values, ip_address, user_agent, created_at
		 FROM audit_logs WHERE entity_type = $1 AND entity_id = $2
		 ORDER BY created_at DESC LIMIT $3`, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		var (
			e      domain.Event
			values []byte
		)
		if err := rows.Scan(&e.ID, &e.Portal, &e.EntityType, &e.EntityID, &e.Action, &values, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(values) > 0 {
			if err := json.Unmarshal(values, &e.NewValues); err != nil {
				return nil, fmt.Errorf("unmarshal audit values: %w", err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
