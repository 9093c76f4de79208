// Package ratelimit gates logins on recent failed attempts and keeps the login attempt trail.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	accountdomain "marketplace-portal/backend/internal/account/domain"
	"marketplace-portal/backend/internal/ratelimit/domain"
	"marketplace-portal/backend/internal/ratelimit/repository"
)

// ErrRateLimited is returned by CheckLoginAttempts when the identifier is locked out.
var ErrRateLimited = errors.New("too many failed login attempts")

const defaultLogTimeout = 3 * time.Second

// Config holds the lockout threshold and window.
type Config struct {
	// MaxFailedAttempts is the failure count at which further attempts are rejected.
	MaxFailedAttempts int
	// Window is the span failures are counted over.
	Window time.Duration
}

// AttemptParams describes one login outcome to record.
type AttemptParams struct {
	ProfileID         string
	Email             string
	Success           bool
	FailureReason     domain.FailureReason
	DeviceFingerprint string
	IPAddress         string
	UserAgent         string
	IPMismatchWarning bool
}

// Service enforces login lockout for one portal.
type Service struct {
	attempts   repository.Repository
	counter    Counter
	cfg        Config
	log        zerolog.Logger
	now        func() time.Time
	logTimeout time.Duration
}

// NewService returns a rate limiting service. counter decides how failures are counted; pass a StoreCounter
// over the same attempts repository to count from the trail.
func NewService(attempts repository.Repository, counter Counter, cfg Config, log zerolog.Logger) *Service {
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	return &Service{
		attempts:   attempts,
		counter:    counter,
		cfg:        cfg,
		log:        log.With().Str("component", "ratelimit").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
		logTimeout: defaultLogTimeout,
	}
}

// SetClock overrides the time used to stamp attempts. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CheckLoginAttempts returns ErrRateLimited when identifier has reached the failure threshold in the window.
// Callers run it before any credential work.
func (s *Service) CheckLoginAttempts(ctx context.Context, identifier string) error {
	n, err := s.counter.Failures(ctx, accountdomain.NormalizeEmail(identifier))
	if err != nil {
		return fmt.Errorf("count login failures: %w", err)
	}
	if n >= s.cfg.MaxFailedAttempts {
		return ErrRateLimited
	}
	return nil
}

// LogLoginAttempt appends one attempt row and feeds the counter. It runs on a context detached from the
// caller's cancellation so a timed-out request still leaves its attempt on record.
func (s *Service) LogLoginAttempt(ctx context.Context, p AttemptParams) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logTimeout)
	defer cancel()

	a := &domain.LoginAttempt{
		ID:                uuid.New().String(),
		ProfileID:         p.ProfileID,
		Email:             accountdomain.NormalizeEmail(p.Email),
		Success:           p.Success,
		FailureReason:     p.FailureReason,
		DeviceFingerprint: p.DeviceFingerprint,
		IPAddress:         p.IPAddress,
		UserAgent:         p.UserAgent,
		IPMismatchWarning: p.IPMismatchWarning,
		AttemptedAt:       s.now(),
	}
	if a.Success {
		a.FailureReason = ""
	}
	if err := s.attempts.Append(ctx, a); err != nil {
		return fmt.Errorf("append login attempt: %w", err)
	}
	if err := s.counter.Observe(ctx, a); err != nil {
		s.log.Warn().Err(err).Str("email", a.Email).Msg("update failure counter")
	}
	return nil
}

// RecentAttempts returns the latest attempts for identifier, newest first.
func (s *Service) RecentAttempts(ctx context.Context, identifier string, limit int) ([]*domain.LoginAttempt, error) {
	return s.attempts.ListByEmail(ctx, accountdomain.NormalizeEmail(identifier), limit)
}
