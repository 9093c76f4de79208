package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace-portal/backend/internal/device/domain"
	portaldomain "marketplace-portal/backend/internal/portal/domain"
)

const bindingColumns = `id, owner_profile_id, device_fingerprint, registered_ip, is_primary, is_active, created_at,
	deactivated_at, deactivated_by, deactivation_reason`

// PostgresRepository stores bindings in the <portal>_device_bindings table.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

// NewPostgresRepository returns a binding repository for portal.
func NewPostgresRepository(db *sql.DB, portal portaldomain.Type) (*PostgresRepository, error) {
	if !portal.Valid() {
		return nil, fmt.Errorf("device repository: unknown portal %q", portal)
	}
	return &PostgresRepository{db: db, table: portal.Table("device_bindings")}, nil
}

// ListByProfile returns all bindings of the profile, newest first.
func (r *PostgresRepository) ListByProfile(ctx context.Context, profileID string) ([]*domain.Binding, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bindingColumns+` FROM `+r.table+`
		WHERE owner_profile_id = $1 ORDER BY created_at DESC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetActiveByFingerprint returns the active binding for fingerprint, or nil.
func (r *PostgresRepository) GetActiveByFingerprint(ctx context.Context, profileID, fingerprint string) (*domain.Binding, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bindingColumns+` FROM `+r.table+`
		WHERE owner_profile_id = $1 AND device_fingerprint = $2 AND is_active
		ORDER BY is_primary DESC, created_at DESC LIMIT 1`, profileID, fingerprint)
	b, err := scanBinding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// Create inserts b. A conflicting active primary binding is reported as (false, nil).
func (r *PostgresRepository) Create(ctx context.Context, b *domain.Binding) (bool, error) {
	q := `INSERT INTO ` + r.table + ` (id, owner_profile_id, device_fingerprint, registered_ip, is_primary, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)`
	if b.IsPrimary {
		q += ` ON CONFLICT (owner_profile_id) WHERE is_active AND is_primary DO NOTHING`
	}
	res, err := r.db.ExecContext(ctx, q, b.ID, b.ProfileID, b.DeviceFingerprint, b.RegisteredIP, b.IsPrimary, b.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		b.IsActive = true
	}
	return n == 1, nil
}

// DeactivateAll deactivates every active binding of the profile.
func (r *PostgresRepository) DeactivateAll(ctx context.Context, profileID, by, reason string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE `+r.table+`
		SET is_active = FALSE, deactivated_at = $2, deactivated_by = $3, deactivation_reason = $4
		WHERE owner_profile_id = $1 AND is_active`, profileID, at, by, reason)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (*domain.Binding, error) {
	var (
		b             domain.Binding
		deactivatedAt sql.NullTime
	)
	err := row.Scan(&b.ID, &b.ProfileID, &b.DeviceFingerprint, &b.RegisteredIP, &b.IsPrimary, &b.IsActive,
		&b.CreatedAt, &deactivatedAt, &b.DeactivatedBy, &b.DeactivationReason)
	if err != nil {
		return nil, err
	}
	if deactivatedAt.Valid {
		t := deactivatedAt.Time
		b.DeactivatedAt = &t
	}
	return &b, nil
}
