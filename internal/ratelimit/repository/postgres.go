package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	portaldomain "marketplace-portal/backend/internal/portal/domain"
	"marketplace-portal/backend/internal/ratelimit/domain"
)

// PostgresRepository stores attempts in the <portal>_login_attempts table.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

// NewPostgresRepository returns a login attempt repository for portal.
func NewPostgresRepository(db *sql.DB, portal portaldomain.Type) (*PostgresRepository, error) {
	if !portal.Valid() {
		return nil, fmt.Errorf("login attempt repository: unknown portal %q", portal)
	}
	return &PostgresRepository{db: db, table: portal.Table("login_attempts")}, nil
}

// Append inserts one attempt row. The attempt must have ID set.
func (r *PostgresRepository) Append(ctx context.Context, a *domain.LoginAttempt) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO `+r.table+` (id, owner_profile_id, email, success, failure_reason,
		device_fingerprint, ip_address, user_agent, ip_mismatch_warning, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, nullString(a.ProfileID), a.Email, a.Success, nullString(string(a.FailureReason)),
		a.DeviceFingerprint, a.IPAddress, a.UserAgent, a.IPMismatchWarning, a.AttemptedAt)
	return err
}

// CountFailuresSince counts lockout-relevant failures for email in the window, reset by the latest success.
func (r *PostgresRepository) CountFailuresSince(ctx context.Context, email string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM `+r.table+` f
		WHERE f.email = $1 AND NOT f.success
		  AND f.failure_reason IS DISTINCT FROM $3
		  AND f.attempted_at > $2
		  AND f.attempted_at > COALESCE(
		      (SELECT max(s.attempted_at) FROM `+r.table+` s WHERE s.email = $1 AND s.success),
		      '-infinity'::timestamptz)`,
		email, since, string(domain.FailureRateLimited)).Scan(&n)
	return n, err
}

// ListByEmail returns up to limit attempts for email, newest first.
func (r *PostgresRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.LoginAttempt, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, owner_profile_id, email, success, failure_reason,
		device_fingerprint, ip_address, user_agent, ip_mismatch_warning, attempted_at
		FROM `+r.table+` WHERE email = $1 ORDER BY attempted_at DESC LIMIT $2`, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.LoginAttempt
	for rows.Next() {
		var (
			a       domain.LoginAttempt
			profile sql.NullString
			reason  sql.NullString
		)
		if err := rows.Scan(&a.ID, &profile, &a.Email, &a.Success, &reason, &a.DeviceFingerprint, &a.IPAddress,
			&a.UserAgent, &a.IPMismatchWarning, &a.AttemptedAt); err != nil {
			return nil, err
		}
		a.ProfileID = profile.String
		a.FailureReason = domain.FailureReason(reason.String)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
