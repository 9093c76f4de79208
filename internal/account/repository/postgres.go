package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"marketplace-portal/backend/internal/account/domain"
)

const uniqueViolation = "23505"

// PostgresRepository stores accounts in the shared accounts table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectAccount = `SELECT id, email, password_hash, password_salt, roles, status, email_verified, created_at FROM accounts`

// GetByID returns the account for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectAccount+` WHERE id = $1`, id))
}

// GetByEmail returns the account whose email matches case-insensitively, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectAccount+` WHERE lower(email) = lower($1)`, email))
}

// Create inserts a. The account must have ID set. Returns ErrEmailTaken on a duplicate email.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	roles := a.Roles
	if roles == nil {
		roles = []string{}
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, password_salt, roles, status, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		a.ID, a.Email, a.PasswordHash, a.PasswordSalt, roles, a.Status, a.EmailVerified,
	).Scan(&a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

// MarkEmailVerified sets email_verified for the account. A missing account is not an error.
func (r *PostgresRepository) MarkEmailVerified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET email_verified = TRUE WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*domain.Account, error) {
	var a domain.Account
	// pgtype.Map is not safe for concurrent use; one per scan.
	roles := pgtype.NewMap().SQLScanner(&a.Roles)
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.PasswordSalt, roles, &a.Status, &a.EmailVerified, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
