// Package service owns the session row lifecycle for one portal: create, validate, invalidate and rotate.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketplace-portal/backend/internal/security"
	"marketplace-portal/backend/internal/session/domain"
	"marketplace-portal/backend/internal/session/repository"
)

// ErrSessionNotActive is returned by UpdateSessionToken when the session to rotate is gone, revoked or expired.
var ErrSessionNotActive = errors.New("session not active")

const (
	sessionTokenBytes    = 32
	defaultLifetime      = 7 * 24 * time.Hour
	defaultTouchInterval = time.Minute
)

// CreateParams describes the session to open.
type CreateParams struct {
	ProfileID         string
	DeviceFingerprint string
	IPAddress         string
	UserAgent         string
}

// Service manages sessions against one portal's session table.
type Service struct {
	repo          repository.Repository
	lifetime      time.Duration
	touchInterval time.Duration
	log           zerolog.Logger
	now           func() time.Time
}

// NewService returns a session service. lifetime is how long a session stays valid after creation;
// touchInterval throttles last_activity_at writes. Non-positive values use 168h and 1m.
func NewService(repo repository.Repository, lifetime, touchInterval time.Duration, log zerolog.Logger) *Service {
	if lifetime <= 0 {
		lifetime = defaultLifetime
	}
	if touchInterval <= 0 {
		touchInterval = defaultTouchInterval
	}
	return &Service{
		repo:          repo,
		lifetime:      lifetime,
		touchInterval: touchInterval,
		log:           log.With().Str("component", "session").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateSession persists a new active session and returns it with its opaque token. Fails with
// repository.ErrActiveSessionExists if the profile already has an active session; logins use ReplaceSessions.
func (s *Service) CreateSession(ctx context.Context, p CreateParams) (*domain.Session, string, error) {
	sess, err := s.newSession(p)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	return sess, sess.SessionToken, nil
}

// ReplaceSessions invalidates every active session of the profile with reason and creates the new one in a
// single atomic step. It returns the new session, its token and how many sessions were invalidated.
func (s *Service) ReplaceSessions(ctx context.Context, p CreateParams, reason domain.InvalidationReason) (*domain.Session, string, int64, error) {
	sess, err := s.newSession(p)
	if err != nil {
		return nil, "", 0, err
	}
	n, err := s.repo.Replace(ctx, sess, reason, sess.CreatedAt)
	if err != nil {
		return nil, "", 0, fmt.Errorf("replace sessions: %w", err)
	}
	return sess, sess.SessionToken, n, nil
}

func (s *Service) newSession(p CreateParams) (*domain.Session, error) {
	if p.ProfileID == "" {
		return nil, errors.New("session: profile id is required")
	}
	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &domain.Session{
		ID:                uuid.New().String(),
		ProfileID:         p.ProfileID,
		SessionToken:      token,
		DeviceFingerprint: p.DeviceFingerprint,
		IPAddress:         p.IPAddress,
		UserAgent:         p.UserAgent,
		IsActive:          true,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.lifetime),
		LastActivityAt:    now,
	}, nil
}

// InvalidateSession deactivates the session with token and reports whether this call changed it. Invalidating an
// already inactive session is a no-op that returns the existing row unchanged; an unknown token returns nil.
func (s *Service) InvalidateSession(ctx context.Context, token string, reason domain.InvalidationReason) (*domain.Session, bool, error) {
	if token == "" {
		return nil, false, nil
	}
	sess, err := s.repo.Invalidate(ctx, token, reason, s.now())
	if err != nil {
		return nil, false, fmt.Errorf("invalidate session: %w", err)
	}
	if sess != nil {
		return sess, true, nil
	}
	existing, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, false, fmt.Errorf("get session: %w", err)
	}
	return existing, false, nil
}

// InvalidateAllSessions deactivates every active session for the profile and returns how many changed.
func (s *Service) InvalidateAllSessions(ctx context.Context, profileID string, reason domain.InvalidationReason) (int64, error) {
	n, err := s.repo.InvalidateAllByProfile(ctx, profileID, reason, s.now())
	if err != nil {
		return 0, fmt.Errorf("invalidate sessions: %w", err)
	}
	return n, nil
}

// ValidateSession returns the session for token when it is active and unexpired, otherwise nil.
// An active session found past its expiry is flipped to EXPIRED before nil is returned. A live session has
// last_activity_at refreshed at most once per touch interval.
func (s *Service) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil || !sess.IsActive {
		return nil, nil
	}
	now := s.now()
	if sess.Expired(now) {
		flipped, err := s.repo.Expire(ctx, token, now)
		if err != nil {
			return nil, fmt.Errorf("expire session: %w", err)
		}
		if flipped {
			s.log.Debug().Str("session_id", sess.ID).Msg("session expired")
		}
		return nil, nil
	}
	if now.Sub(sess.LastActivityAt) > s.touchInterval {
		if err := s.repo.Touch(ctx, token, now, now.Add(-s.touchInterval)); err != nil {
			// A failed touch must not fail authentication.
			s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("touch session")
		} else {
			sess.LastActivityAt = now
		}
	}
	return sess, nil
}

// NewSessionToken returns a fresh opaque session token for use with UpdateSessionToken.
func NewSessionToken() (string, error) {
	token, err := security.RandomToken(sessionTokenBytes)
	if err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return token, nil
}

// UpdateSessionToken rotates the token of the profile's active session in place to newToken. previousToken
// must be the session's current token, so a revoked or already rotated session is never revived; otherwise
// ErrSessionNotActive is returned. refreshHint is the hash of the refresh token issued alongside newToken.
func (s *Service) UpdateSessionToken(ctx context.Context, profileID, previousToken, newToken, refreshHint string) error {
	if newToken == "" || newToken == previousToken {
		return errors.New("session: rotation needs a new token")
	}
	ok, err := s.repo.Rotate(ctx, profileID, previousToken, newToken, refreshHint, s.now())
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	if !ok {
		return ErrSessionNotActive
	}
	return nil
}

// SetRefreshHint records the hash of the refresh token issued for the session.
func (s *Service) SetRefreshHint(ctx context.Context, token, hint string) error {
	if err := s.repo.SetRefreshHint(ctx, token, hint); err != nil {
		return fmt.Errorf("set refresh hint: %w", err)
	}
	return nil
}

// ActiveSessions lists the profile's active sessions.
func (s *Service) ActiveSessions(ctx context.Context, profileID string) ([]*domain.Session, error) {
	return s.repo.ListActiveByProfile(ctx, profileID)
}
