package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"marketplace-portal/backend/internal/db"
	portaldomain "marketplace-portal/backend/internal/portal/domain"
	"marketplace-portal/backend/internal/session/domain"
)

const uniqueViolation = "23505"

const sessionColumns = `id, owner_profile_id, session_token, refresh_token_hint, device_fingerprint, ip_address,
	user_agent, is_active, created_at, expires_at, last_activity_at, invalidated_at, invalidation_reason`

// PostgresRepository stores sessions in the <portal>_sessions table.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

// NewPostgresRepository returns a session repository for portal.
func NewPostgresRepository(conn *sql.DB, portal portaldomain.Type) (*PostgresRepository, error) {
	if !portal.Valid() {
		return nil, fmt.Errorf("session repository: unknown portal %q", portal)
	}
	return &PostgresRepository{db: conn, table: portal.Table("sessions")}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create inserts s. The session must have ID and SessionToken set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	return r.insert(ctx, r.db, s)
}

func (r *PostgresRepository) insert(ctx context.Context, q execer, s *domain.Session) error {
	_, err := q.ExecContext(ctx, `INSERT INTO `+r.table+` (id, owner_profile_id, session_token, refresh_token_hint,
		device_fingerprint, ip_address, user_agent, is_active, created_at, expires_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $9, $10)`,
		s.ID, s.ProfileID, s.SessionToken, s.RefreshTokenHint, s.DeviceFingerprint, s.IPAddress, s.UserAgent,
		s.CreatedAt, s.ExpiresAt, s.LastActivityAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrActiveSessionExists
	}
	return err
}

// GetByToken returns the session with token regardless of state, or nil if not found.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM `+r.table+` WHERE session_token = $1`, token)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// ListActiveByProfile returns the profile's active sessions, newest first.
func (r *PostgresRepository) ListActiveByProfile(ctx context.Context, profileID string) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM `+r.table+`
		WHERE owner_profile_id = $1 AND is_active ORDER BY created_at DESC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Invalidate deactivates the active session with token. Returns nil when nothing was active.
func (r *PostgresRepository) Invalidate(ctx context.Context, token string, reason domain.InvalidationReason, at time.Time) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE `+r.table+`
		SET is_active = FALSE, invalidated_at = $2, invalidation_reason = $3
		WHERE session_token = $1 AND is_active
		RETURNING `+sessionColumns, token, at, string(reason))
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// InvalidateAllByProfile deactivates every active session for the profile.
func (r *PostgresRepository) InvalidateAllByProfile(ctx context.Context, profileID string, reason domain.InvalidationReason, at time.Time) (int64, error) {
	return r.invalidateAll(ctx, r.db, profileID, reason, at)
}

func (r *PostgresRepository) invalidateAll(ctx context.Context, q execer, profileID string, reason domain.InvalidationReason, at time.Time) (int64, error) {
	res, err := q.ExecContext(ctx, `UPDATE `+r.table+`
		SET is_active = FALSE, invalidated_at = $2, invalidation_reason = $3
		WHERE owner_profile_id = $1 AND is_active`, profileID, at, string(reason))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Replace runs invalidate-all and insert in one transaction under an advisory lock keyed by table and profile,
// so concurrent logins for the same profile serialize and exactly one session stays active.
func (r *PostgresRepository) Replace(ctx context.Context, s *domain.Session, reason domain.InvalidationReason, at time.Time) (int64, error) {
	var n int64
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, r.table+":"+s.ProfileID); err != nil {
			return err
		}
		var err error
		if n, err = r.invalidateAll(ctx, tx, s.ProfileID, reason, at); err != nil {
			return err
		}
		return r.insert(ctx, tx, s)
	})
	return n, err
}

// Expire flips the session to EXPIRED if it is still active and past expires_at.
func (r *PostgresRepository) Expire(ctx context.Context, token string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE `+r.table+`
		SET is_active = FALSE, invalidated_at = $2, invalidation_reason = $3
		WHERE session_token = $1 AND is_active AND expires_at <= $2`, token, now, string(domain.ReasonExpired))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Touch updates last_activity_at when it is older than staleBefore.
func (r *PostgresRepository) Touch(ctx context.Context, token string, now, staleBefore time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE `+r.table+` SET last_activity_at = $2
		WHERE session_token = $1 AND is_active AND last_activity_at < $3`, token, now, staleBefore)
	return err
}

// Rotate replaces the token of the profile's live session identified by previousToken.
func (r *PostgresRepository) Rotate(ctx context.Context, profileID, previousToken, newToken, refreshHint string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE `+r.table+`
		SET session_token = $3, refresh_token_hint = $4, last_activity_at = $5
		WHERE owner_profile_id = $1 AND session_token = $2 AND is_active AND expires_at > $5`,
		profileID, previousToken, newToken, refreshHint, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// SetRefreshHint stores the hash of the refresh token issued for the active session.
func (r *PostgresRepository) SetRefreshHint(ctx context.Context, token, hint string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE `+r.table+` SET refresh_token_hint = $2
		WHERE session_token = $1 AND is_active`, token, hint)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s             domain.Session
		invalidatedAt sql.NullTime
		reason        sql.NullString
	)
	err := row.Scan(&s.ID, &s.ProfileID, &s.SessionToken, &s.RefreshTokenHint, &s.DeviceFingerprint, &s.IPAddress,
		&s.UserAgent, &s.IsActive, &s.CreatedAt, &s.ExpiresAt, &s.LastActivityAt, &invalidatedAt, &reason)
	if err != nil {
		return nil, err
	}
	if invalidatedAt.Valid {
		t := invalidatedAt.Time
		s.InvalidatedAt = &t
	}
	if reason.Valid {
		s.InvalidationReason = domain.InvalidationReason(reason.String)
	}
	return &s, nil
}
