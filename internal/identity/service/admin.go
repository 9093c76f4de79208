package service

import (
	"context"
	"errors"
	"fmt"

	auditdomain "marketplace-portal/backend/internal/audit/domain"
	devicedomain "marketplace-portal/backend/internal/device/domain"
	"marketplace-portal/backend/internal/identity/domain"
	"marketplace-portal/backend/internal/metrics"
	portaldomain "marketplace-portal/backend/internal/portal/domain"
	sessiondomain "marketplace-portal/backend/internal/session/domain"
)

// AdminAction identifies the profile an administrative action targets and who performed it.
type AdminAction struct {
	ProfileID string
	Actor     string
	Note      string
	IPAddress string
	UserAgent string
}

// AdminResult counts what an administrative action changed.
type AdminResult struct {
	BindingsDeactivated int64
	SessionsInvalidated int64
}

// ResetDevice deactivates every binding of the profile and then ends its sessions with DEVICE_RESET. The next
// login binds afresh on lazily binding portals and fails with DeviceNotBound elsewhere.
func (s *AuthService) ResetDevice(ctx context.Context, a AdminAction) (*AdminResult, error) {
	ctx, span := s.start(ctx, "auth.reset_device")
	defer span.End()

	res, err := s.revoke(ctx, a, true, devicedomain.DeactivatedDeviceReset, sessiondomain.ReasonDeviceReset, auditdomain.ActionDeviceReset)
	endSpan(span, err)
	return res, err
}

// SuspendAccess marks the profile SUSPENDED, deactivates its bindings and ends its sessions with
// ACCOUNT_SUSPENDED.
func (s *AuthService) SuspendAccess(ctx context.Context, a AdminAction) (*AdminResult, error) {
	ctx, span := s.start(ctx, "auth.suspend_access")
	defer span.End()

	if _, err := s.targetProfile(ctx, a.ProfileID); err != nil {
		endSpan(span, err)
		return nil, err
	}
	if err := s.policy.Profiles().UpdateStatus(ctx, a.ProfileID, portaldomain.StatusSuspended); err != nil {
		err = fmt.Errorf("suspend profile: %w", err)
		endSpan(span, err)
		return nil, err
	}
	res, err := s.revoke(ctx, a, true, devicedomain.DeactivatedAccountSuspended, sessiondomain.ReasonAccountSuspended, auditdomain.ActionAccessSuspended)
	endSpan(span, err)
	return res, err
}

// RevokeSessions ends every active session of the profile with ADMIN_RESET. Bindings are left alone.
func (s *AuthService) RevokeSessions(ctx context.Context, a AdminAction) (*AdminResult, error) {
	ctx, span := s.start(ctx, "auth.revoke_sessions")
	defer span.End()

	res, err := s.revoke(ctx, a, false, "", sessiondomain.ReasonAdminReset, auditdomain.ActionSessionsRevoked)
	endSpan(span, err)
	return res, err
}

func (s *AuthService) revoke(ctx context.Context, a AdminAction, deactivate bool, deactivation string,
	reason sessiondomain.InvalidationReason, action string) (*AdminResult, error) {
	if _, err := s.targetProfile(ctx, a.ProfileID); err != nil {
		return nil, err
	}
	res := &AdminResult{}
	if deactivate {
		n, err := s.bindings.DeactivateAll(ctx, a.ProfileID, a.Actor, deactivation, s.now())
		if err != nil {
			return nil, fmt.Errorf("deactivate bindings: %w", err)
		}
		res.BindingsDeactivated = n
	}
	n, err := s.sessions.InvalidateAllSessions(ctx, a.ProfileID, reason)
	if err != nil {
		return nil, err
	}
	res.SessionsInvalidated = n
	if n > 0 {
		metrics.SessionsInvalidatedTotal.WithLabelValues(s.portal, string(reason)).Add(float64(n))
	}

	s.audit.Record(ctx, auditdomain.Event{
		Portal:     s.portal,
		EntityType: auditdomain.EntityProfile,
		EntityID:   a.ProfileID,
		Action:     action,
		NewValues: map[string]any{
			"actor":                a.Actor,
			"note":                 a.Note,
			"bindings_deactivated": res.BindingsDeactivated,
			"sessions_invalidated": res.SessionsInvalidated,
		},
		IPAddress: a.IPAddress,
		UserAgent: a.UserAgent,
	})
	s.log.Info().Str("profile_id", a.ProfileID).Str("actor", a.Actor).Str("action", action).
		Int64("sessions", n).Msg("administrative revocation")
	return res, nil
}

func (s *AuthService) targetProfile(ctx context.Context, profileID string) (*portaldomain.Profile, error) {
	if profileID == "" {
		return nil, domain.InvalidInput("profile id is required")
	}
	p, err := s.policy.Profiles().GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// ErrProfileNotFound is returned by administrative actions naming an unknown profile.
var ErrProfileNotFound = errors.New("profile not found")
