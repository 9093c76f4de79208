package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace-portal/backend/internal/portal/domain"
)

// PostgresRepository stores profiles in the <portal>_profiles table.
type PostgresRepository struct {
	db     *sql.DB
	portal domain.Type
	table  string
}

// NewPostgresRepository returns a profile repository for portal.
func NewPostgresRepository(db *sql.DB, portal domain.Type) (*PostgresRepository, error) {
	if !portal.Valid() {
		return nil, fmt.Errorf("profile repository: unknown portal %q", portal)
	}
	return &PostgresRepository{db: db, portal: portal, table: portal.Table("profiles")}, nil
}

// GetByID returns the profile for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, account_id, status, display_name, created_at FROM `+r.table+` WHERE id = $1`, id))
}

// GetByAccountID returns the account's profile in this portal, or nil if it has none.
func (r *PostgresRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Profile, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, account_id, status, display_name, created_at FROM `+r.table+` WHERE account_id = $1`, accountID))
}

// Create inserts p. The profile must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Profile) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO `+r.table+` (id, account_id, status, display_name) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		p.ID, p.AccountID, p.Status, p.DisplayName,
	).Scan(&p.CreatedAt)
}

// UpdateStatus sets the profile status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE `+r.table+` SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*domain.Profile, error) {
	p := domain.Profile{Portal: r.portal}
	if err := row.Scan(&p.ID, &p.AccountID, &p.Status, &p.DisplayName, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
