// Package service implements the login, refresh and logout protocols shared by every portal. One AuthService
// is built per portal; the portal.Policy it is given supplies the profile lookup, account-status rules and
// device binding behaviour that differ between portals.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	accountdomain "marketplace-portal/backend/internal/account/domain"
	accountrepo "marketplace-portal/backend/internal/account/repository"
	"marketplace-portal/backend/internal/audit"
	auditdomain "marketplace-portal/backend/internal/audit/domain"
	"marketplace-portal/backend/internal/authconfig"
	devicedomain "marketplace-portal/backend/internal/device/domain"
	devicerepo "marketplace-portal/backend/internal/device/repository"
	deviceservice "marketplace-portal/backend/internal/device/service"
	"marketplace-portal/backend/internal/identity/domain"
	"marketplace-portal/backend/internal/metrics"
	"marketplace-portal/backend/internal/policy/engine"
	"marketplace-portal/backend/internal/portal"
	portaldomain "marketplace-portal/backend/internal/portal/domain"
	"marketplace-portal/backend/internal/ratelimit"
	ratelimitdomain "marketplace-portal/backend/internal/ratelimit/domain"
	"marketplace-portal/backend/internal/security"
	sessiondomain "marketplace-portal/backend/internal/session/domain"
	sessionservice "marketplace-portal/backend/internal/session/service"
)

var tracer = otel.Tracer("marketplace-portal/backend/internal/identity/service")

// Deps holds the collaborators of an AuthService. Audit may be nil.
type Deps struct {
	Policy    portal.Policy
	Accounts  accountrepo.Repository
	Passwords *security.PasswordService
	Tokens    *security.TokenProvider
	Sessions  *sessionservice.Service
	Devices   *deviceservice.Service
	Bindings  devicerepo.Repository
	Limiter   *ratelimit.Service
	Toggles   authconfig.Toggles
	Audit     audit.Recorder
	Log       zerolog.Logger

	Expiry                    security.TokenExpiry
	EmailVerificationTTLHours int
}

// AuthService runs the authentication protocols for one portal.
type AuthService struct {
	policy    portal.Policy
	portal    string
	accounts  accountrepo.Repository
	passwords *security.PasswordService
	tokens    *security.TokenProvider
	sessions  *sessionservice.Service
	devices   *deviceservice.Service
	bindings  devicerepo.Repository
	limiter   *ratelimit.Service
	toggles   authconfig.Toggles
	audit     audit.Recorder
	log       zerolog.Logger
	validate  *validator.Validate

	expiry        security.TokenExpiry
	verifyTTLHour int
	now           func() time.Time
}

// NewAuthService returns an AuthService wired from deps.
func NewAuthService(deps Deps) (*AuthService, error) {
	switch {
	case deps.Policy == nil:
		return nil, errors.New("auth: policy is required")
	case deps.Accounts == nil, deps.Bindings == nil:
		return nil, errors.New("auth: account and binding repositories are required")
	case deps.Passwords == nil, deps.Tokens == nil:
		return nil, errors.New("auth: password and token services are required")
	case deps.Sessions == nil, deps.Devices == nil, deps.Limiter == nil:
		return nil, errors.New("auth: session, device and rate limit services are required")
	}
	if deps.Expiry.Access <= 0 {
		deps.Expiry.Access = 15 * time.Minute
	}
	if deps.Expiry.Refresh <= 0 {
		deps.Expiry.Refresh = 7 * 24 * time.Hour
	}
	if deps.EmailVerificationTTLHours <= 0 {
		deps.EmailVerificationTTLHours = 24
	}
	rec := deps.Audit
	if rec == nil {
		rec = audit.Nop{}
	}
	name := string(deps.Policy.Type())
	return &AuthService{
		policy:        deps.Policy,
		portal:        name,
		accounts:      deps.Accounts,
		passwords:     deps.Passwords,
		tokens:        deps.Tokens,
		sessions:      deps.Sessions,
		devices:       deps.Devices,
		bindings:      deps.Bindings,
		limiter:       deps.Limiter,
		toggles:       deps.Toggles,
		audit:         rec,
		log:           deps.Log.With().Str("component", "auth").Str("portal", name).Logger(),
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		expiry:        deps.Expiry,
		verifyTTLHour: deps.EmailVerificationTTLHours,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// Portal returns the portal this service authenticates for.
func (s *AuthService) Portal() portaldomain.Type {
	return s.policy.Type()
}

// LoginInput is the login call.
type LoginInput struct {
	Email             string `validate:"required,max=254"`
	Password          string `validate:"required,max=1024"`
	DeviceFingerprint string `validate:"max=512"`
	IPAddress         string `validate:"max=64"`
	UserAgent         string `validate:"max=1024"`
}

// RefreshInput is the refresh call.
type RefreshInput struct {
	RefreshToken      string `validate:"required"`
	DeviceFingerprint string `validate:"max=512"`
	IPAddress         string `validate:"max=64"`
	UserAgent         string `validate:"max=1024"`
}

// LogoutInput is the logout call.
type LogoutInput struct {
	SessionToken string
	IPAddress    string
	UserAgent    string
}

// ProfileSummary is the minimal profile data returned with tokens.
type ProfileSummary struct {
	ProfileID   string
	AccountID   string
	Email       string
	Portal      string
	DisplayName string
	Status      string
	CustomerID  string
	SupplierID  string
	Roles       []string
}

// AuthResult is returned by Login, Refresh and Register.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn         int64
	AccessExpiresAt   time.Time
	RefreshExpiresAt  time.Time
	Profile           ProfileSummary
	IPMismatchWarning bool
}

// Identity is the authenticated caller behind a request.
type Identity struct {
	AccountID    string
	Email        string
	Portal       string
	ProfileID    string
	CustomerID   string
	SupplierID   string
	Roles        []string
	SessionID    string
	SessionToken string
}

// Login authenticates email and password for this portal and opens the profile's only active session.
// Checks run in a fixed order and the first failure ends the attempt; every outcome is recorded in the
// login attempt trail.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	started := time.Now()
	ctx, span := s.start(ctx, "auth.login")
	defer span.End()

	res, err := s.login(ctx, in)
	metrics.ObserveLogin(s.portal, outcome(err), started)
	endSpan(span, err)
	return res, err
}

func (s *AuthService) login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	email := accountdomain.NormalizeEmail(in.Email)
	attempt := ratelimit.AttemptParams{
		Email:             email,
		DeviceFingerprint: in.DeviceFingerprint,
		IPAddress:         in.IPAddress,
		UserAgent:         in.UserAgent,
	}

	if err := s.limiter.CheckLoginAttempts(ctx, email); err != nil {
		if errors.Is(err, ratelimit.ErrRateLimited) {
			return nil, s.reject(ctx, attempt, ratelimitdomain.FailureRateLimited, domain.ErrRateLimited)
		}
		return nil, fmt.Errorf("check login attempts: %w", err)
	}

	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		if !s.toggles.PasswordVerificationDisabled() {
			s.passwords.DummyVerify(in.Password)
		}
		return nil, s.reject(ctx, attempt, ratelimitdomain.FailureInvalidCredentials, domain.ErrInvalidCredentials)
	}
	if !s.toggles.PasswordVerificationDisabled() && !s.passwords.Verify(in.Password, acct.PasswordHash) {
		return nil, s.reject(ctx, attempt, ratelimitdomain.FailureInvalidCredentials, domain.ErrInvalidCredentials)
	}

	profile, err := s.policy.FindProfile(ctx, acct)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, s.reject(ctx, attempt, ratelimitdomain.FailurePortalMismatch, domain.ErrPortalMismatch)
	}
	attempt.ProfileID = profile.ID

	if !s.toggles.EmailVerificationDisabled() && !acct.EmailVerified {
		return nil, s.reject(ctx, attempt, ratelimitdomain.FailureEmailNotVerified, domain.ErrEmailNotVerified)
	}

	if !s.toggles.AccountStatusCheckDisabled() {
		if reason, authErr := s.checkStatus(ctx, acct, profile); authErr != nil {
			return nil, s.reject(ctx, attempt, reason, authErr)
		}
	}

	var binding *devicedomain.Binding
	if !s.toggles.DeviceFingerprintDisabled() || !s.toggles.IPMismatchCheckDisabled() {
		if binding, err = s.devices.PrimaryBinding(ctx, profile.ID); err != nil {
			return nil, err
		}
	}
	if !s.toggles.DeviceFingerprintDisabled() {
		if binding == nil && s.policy.LazyDeviceBinding() && in.DeviceFingerprint != "" {
			if binding, err = s.bindOnFirstLogin(ctx, profile, in); err != nil {
				return nil, err
			}
		}
		if binding == nil {
			return nil, s.reject(ctx, attempt, ratelimitdomain.FailureDeviceNotBound, domain.ErrDeviceNotBound)
		}
		if !deviceservice.Matches(binding, in.DeviceFingerprint) {
			s.recordDeviceMismatch(ctx, profile.ID, in.DeviceFingerprint, in.IPAddress, in.UserAgent)
			return nil, s.reject(ctx, attempt, ratelimitdomain.FailureDeviceMismatch, domain.ErrDeviceMismatch)
		}
	}

	if !s.toggles.IPMismatchCheckDisabled() && binding != nil && binding.RegisteredIP != "" &&
		in.IPAddress != "" && binding.RegisteredIP != in.IPAddress {
		attempt.IPMismatchWarning = true
		s.log.Warn().Str("profile_id", profile.ID).Str("registered_ip", binding.RegisteredIP).
			Str("ip", in.IPAddress).Msg("login from a different ip than the bound device")
	}

	sess, sessionToken, replaced, err := s.sessions.ReplaceSessions(ctx, sessionservice.CreateParams{
		ProfileID:         profile.ID,
		DeviceFingerprint: in.DeviceFingerprint,
		IPAddress:         in.IPAddress,
		UserAgent:         in.UserAgent,
	}, sessiondomain.ReasonNewLogin)
	if err != nil {
		return nil, err
	}
	if replaced > 0 {
		metrics.SessionsInvalidatedTotal.WithLabelValues(s.portal, string(sessiondomain.ReasonNewLogin)).Add(float64(replaced))
	}

	res, err := s.issue(ctx, acct, profile, sessionToken)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SetRefreshHint(ctx, sessionToken, security.HashRefreshToken(res.RefreshToken)); err != nil {
		return nil, err
	}
	res.IPMismatchWarning = attempt.IPMismatchWarning

	attempt.Success = true
	if err := s.limiter.LogLoginAttempt(ctx, attempt); err != nil {
		s.log.Error().Err(err).Str("profile_id", profile.ID).Msg("log successful login attempt")
	}
	s.audit.Record(ctx, auditdomain.Event{
		Portal:     s.portal,
		EntityType: auditdomain.EntityProfile,
		EntityID:   profile.ID,
		Action:     auditdomain.ActionLoginSuccess,
		NewValues: map[string]any{
			"session_id":          sess.ID,
			"sessions_replaced":   replaced,
			"ip_mismatch_warning": attempt.IPMismatchWarning,
		},
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	})
	s.log.Info().Str("profile_id", profile.ID).Str("session_id", sess.ID).Msg("login succeeded")
	return res, nil
}

// bindOnFirstLogin creates the primary binding for a portal that binds lazily. When a concurrent login won
// the race, the binding it created is returned instead.
func (s *AuthService) bindOnFirstLogin(ctx context.Context, profile *portaldomain.Profile, in LoginInput) (*devicedomain.Binding, error) {
	b := &devicedomain.Binding{
		ID:                uuid.New().String(),
		ProfileID:         profile.ID,
		DeviceFingerprint: in.DeviceFingerprint,
		RegisteredIP:      in.IPAddress,
		IsPrimary:         true,
		IsActive:          true,
		CreatedAt:         s.now(),
	}
	created, err := s.bindings.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create device binding: %w", err)
	}
	if !created {
		return s.devices.PrimaryBinding(ctx, profile.ID)
	}
	s.audit.Record(ctx, auditdomain.Event{
		Portal:     s.portal,
		EntityType: auditdomain.EntityProfile,
		EntityID:   profile.ID,
		Action:     auditdomain.ActionDeviceBound,
		NewValues:  map[string]any{"binding_id": b.ID, "first_login": true},
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	})
	return b, nil
}

// Refresh exchanges a refresh token for a new pair. The session token is rotated in place; a refresh against a
// session that has since been revoked, expired or rotated fails.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput) (*AuthResult, error) {
	ctx, span := s.start(ctx, "auth.refresh")
	defer span.End()

	res, err := s.refresh(ctx, in)
	metrics.RefreshesTotal.WithLabelValues(s.portal, outcome(err)).Inc()
	endSpan(span, err)
	return res, err
}

func (s *AuthService) refresh(ctx context.Context, in RefreshInput) (*AuthResult, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	claims, err := s.tokens.VerifyRefresh(in.RefreshToken)
	if err != nil || claims.Portal != s.portal {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	sess, err := s.sessions.ValidateSession(ctx, claims.SessionToken)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.ProfileID != claims.ProfileID {
		return nil, domain.ErrSessionRevokedOrExpired
	}
	if !security.RefreshTokenHashEqual(in.RefreshToken, sess.RefreshTokenHint) {
		s.log.Warn().Str("session_id", sess.ID).Msg("refresh token does not match the latest issued for session")
		return nil, domain.ErrSessionRevokedOrExpired
	}

	acct, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	profile, err := s.policy.Profiles().GetByID(ctx, sess.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil || profile.AccountID != acct.ID {
		return nil, domain.ErrSessionRevokedOrExpired
	}

	if !s.toggles.DeviceFingerprintDisabled() {
		binding, err := s.devices.PrimaryBinding(ctx, profile.ID)
		if err != nil {
			return nil, err
		}
		if binding == nil {
			return nil, domain.ErrDeviceNotBound
		}
		if !deviceservice.Matches(binding, in.DeviceFingerprint) {
			s.recordDeviceMismatch(ctx, profile.ID, in.DeviceFingerprint, in.IPAddress, in.UserAgent)
			return nil, domain.ErrDeviceMismatch
		}
	}
	if !s.toggles.AccountStatusCheckDisabled() {
		if _, authErr := s.checkStatus(ctx, acct, profile); authErr != nil {
			return nil, authErr
		}
	}

	newToken, err := sessionservice.NewSessionToken()
	if err != nil {
		return nil, err
	}
	res, err := s.issue(ctx, acct, profile, newToken)
	if err != nil {
		return nil, err
	}
	err = s.sessions.UpdateSessionToken(ctx, profile.ID, claims.SessionToken, newToken, security.HashRefreshToken(res.RefreshToken))
	if errors.Is(err, sessionservice.ErrSessionNotActive) {
		return nil, domain.ErrSessionRevokedOrExpired
	}
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditdomain.Event{
		Portal:     s.portal,
		EntityType: auditdomain.EntitySession,
		EntityID:   sess.ID,
		Action:     auditdomain.ActionTokenRefreshed,
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	})
	return res, nil
}

// Logout invalidates the session with reason LOGOUT. Unknown or already inactive sessions are a no-op and are
// not audited.
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.start(ctx, "auth.logout")
	defer span.End()

	sess, changed, err := s.sessions.InvalidateSession(ctx, in.SessionToken, sessiondomain.ReasonLogout)
	if err != nil {
		endSpan(span, err)
		return err
	}
	if !changed {
		return nil
	}
	metrics.SessionsInvalidatedTotal.WithLabelValues(s.portal, string(sessiondomain.ReasonLogout)).Inc()
	s.audit.Record(ctx, auditdomain.Event{
		Portal:     s.portal,
		EntityType: auditdomain.EntitySession,
		EntityID:   sess.ID,
		Action:     auditdomain.ActionLogout,
		NewValues:  map[string]any{"profile_id": sess.ProfileID},
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	})
	return nil
}

// Authenticate resolves the caller behind an access token. The token must verify and its session must still be
// active; any failure is ErrUnauthenticated. Store errors are returned as they are.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	ctx, span := s.start(ctx, "auth.authenticate")
	defer span.End()

	id, err := s.authenticate(ctx, accessToken)
	result := "ok"
	if err != nil {
		result = "unauthenticated"
	}
	metrics.AuthenticationsTotal.WithLabelValues(s.portal, result).Inc()
	endSpan(span, err)
	return id, err
}

func (s *AuthService) authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil || claims.Portal != s.portal {
		return nil, domain.ErrUnauthenticated
	}
	sess, err := s.sessions.ValidateSession(ctx, claims.SessionToken)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.ProfileID != claims.ProfileID {
		return nil, domain.ErrUnauthenticated
	}
	return &Identity{
		AccountID:    claims.Subject,
		Email:        claims.Email,
		Portal:       claims.Portal,
		ProfileID:    claims.ProfileID,
		CustomerID:   claims.CustomerID,
		SupplierID:   claims.SupplierID,
		Roles:        claims.Roles,
		SessionID:    sess.ID,
		SessionToken: sess.SessionToken,
	}, nil
}

// issue builds the token payload for profile and signs an access/refresh pair bound to sessionToken.
func (s *AuthService) issue(ctx context.Context, acct *accountdomain.Account, profile *portaldomain.Profile, sessionToken string) (*AuthResult, error) {
	scoped := s.policy.ScopedIDs(profile)
	pair, err := s.tokens.GenerateTokenPair(security.TokenPayload{
		AccountID:    acct.ID,
		Email:        acct.Email,
		Portal:       s.portal,
		SessionToken: sessionToken,
		ProfileID:    profile.ID,
		CustomerID:   scoped.CustomerID,
		SupplierID:   scoped.SupplierID,
		Roles:        acct.Roles,
	}, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &AuthResult{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresIn:        int64(s.expiry.Access / time.Second),
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		Profile: ProfileSummary{
			ProfileID:   profile.ID,
			AccountID:   acct.ID,
			Email:       acct.Email,
			Portal:      s.portal,
			DisplayName: profile.DisplayName,
			Status:      profile.Status,
			CustomerID:  scoped.CustomerID,
			SupplierID:  scoped.SupplierID,
			Roles:       acct.Roles,
		},
	}, nil
}

// checkStatus maps the portal's status decision to a failure reason and error. A policy evaluation error
// fails closed with the decision's outcome.
func (s *AuthService) checkStatus(ctx context.Context, acct *accountdomain.Account, profile *portaldomain.Profile) (ratelimitdomain.FailureReason, error) {
	d, err := s.policy.CheckStatus(ctx, acct, profile)
	if err != nil {
		s.log.Error().Err(err).Str("profile_id", profile.ID).Msg("evaluate account status")
	}
	if err == nil && d.Allow {
		return "", nil
	}
	switch d.Outcome {
	case engine.OutcomePending:
		return ratelimitdomain.FailureAccountPending, domain.ErrAccountPending
	case engine.OutcomeSuspended:
		return ratelimitdomain.FailureAccountSuspended, domain.ErrAccountSuspended
	default:
		return ratelimitdomain.FailureAccountDeactivated, domain.ErrAccountDeactivated
	}
}

// reject records a failed login and returns authErr. Rate-limited rejections are audited under their own
// action so lockouts stand out in the trail.
func (s *AuthService) reject(ctx context.Context, attempt ratelimit.AttemptParams, reason ratelimitdomain.FailureReason, authErr error) error {
	attempt.Success = false
	attempt.FailureReason = reason
	if err := s.limiter.LogLoginAttempt(ctx, attempt); err != nil {
		s.log.Error().Err(err).Str("email", attempt.Email).Msg("log failed login attempt")
	}
	s.log.Info().Str("email", attempt.Email).Str("reason", string(reason)).Msg("login rejected")

	action := auditdomain.ActionLoginFailure
	if reason == ratelimitdomain.FailureRateLimited {
		action = auditdomain.ActionRateLimited
	}
	entityType, entityID := auditdomain.EntityAccount, attempt.Email
	if attempt.ProfileID != "" {
		entityType, entityID = auditdomain.EntityProfile, attempt.ProfileID
	}
	s.audit.Record(ctx, auditdomain.Event{
		Portal:     s.portal,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		NewValues:  map[string]any{"reason": string(reason)},
		IPAddress:  attempt.IPAddress,
		UserAgent:  attempt.UserAgent,
	})
	return authErr
}

func (s *AuthService) recordDeviceMismatch(ctx context.Context, profileID, fingerprint, ip, userAgent string) {
	s.log.Warn().Str("profile_id", profileID).Str("ip", ip).Msg("device fingerprint mismatch")
	s.audit.Record(ctx, auditdomain.Event{
		Portal:     s.portal,
		EntityType: auditdomain.EntityProfile,
		EntityID:   profileID,
		Action:     auditdomain.ActionDeviceMismatch,
		NewValues:  map[string]any{"presented_fingerprint": fingerprint},
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
}

func (s *AuthService) validateInput(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.InvalidInput(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
	}
	return domain.ErrInvalidInput
}

func (s *AuthService) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("portal", s.portal)))
}

// outcome is the metrics label for err: "success", the failure kind, or "error" for infrastructure failures.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if k := domain.KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(attribute.String("auth.outcome", outcome(err)))
	if domain.KindOf(err) == "" {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
}
