package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	accountdomain "marketplace-portal/backend/internal/account/domain"
	accountrepo "marketplace-portal/backend/internal/account/repository"
	auditdomain "marketplace-portal/backend/internal/audit/domain"
	devicedomain "marketplace-portal/backend/internal/device/domain"
	"marketplace-portal/backend/internal/identity/domain"
	"marketplace-portal/backend/internal/security"
	portaldomain "marketplace-portal/backend/internal/portal/domain"
	sessiondomain "marketplace-portal/backend/internal/session/domain"
	sessionservice "marketplace-portal/backend/internal/session/service"
)

// RegisterInput is a self-registration on a portal.
type RegisterInput struct {
	Email             string `validate:"required,email,max=254"`
	Password          string `validate:"required,min=8,max=1024"`
	DisplayName       string `validate:"max=200"`
	DeviceFingerprint string `validate:"required,max=512"`
	IPAddress         string `validate:"max=64"`
	UserAgent         string `validate:"max=1024"`
}

// RegisterResult is a registration's tokens plus the email verification token to deliver out of band.
type RegisterResult struct {
	AuthResult
	VerificationToken string
}

// Register creates an account, its profile on this portal, a primary binding for the presented device and a
// first session. The account starts unverified and the profile PENDING, so a later Login is refused until
// both are cleared.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	ctx, span := s.start(ctx, "auth.register")
	defer span.End()

	res, err := s.register(ctx, in)
	endSpan(span, err)
	return res, err
}

func (s *AuthService) register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if !s.policy.AllowsRegistration() {
		return nil, domain.ErrRegistrationClosed
	}
	email := accountdomain.NormalizeEmail(in.Email)
	acct, profile, binding, err := s.resumeRegistration(ctx, email, in)
	if err != nil {
		return nil, err
	}

	if acct == nil {
		hash, salt, err := s.passwords.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		acct = &accountdomain.Account{
			ID:           uuid.New().String(),
			Email:        email,
			PasswordHash: hash,
			PasswordSalt: salt,
			Status:       "ACTIVE",
			CreatedAt:    s.now(),
		}
		if err := s.accounts.Create(ctx, acct); err != nil {
			if errors.Is(err, accountrepo.ErrEmailTaken) {
				return nil, domain.ErrEmailTaken
			}
			return nil, fmt.Errorf("create account: %w", err)
		}
	}

	if profile == nil {
		displayName := strings.TrimSpace(in.DisplayName)
		if displayName == "" {
			displayName = email
		}
		if profile, err = s.policy.CreateProfile(ctx, acct, displayName); err != nil {
			return nil, err
		}
	}

	if binding == nil {
		binding = &devicedomain.Binding{
			ID:                uuid.New().String(),
			ProfileID:         profile.ID,
			DeviceFingerprint: in.DeviceFingerprint,
			RegisteredIP:      in.IPAddress,
			IsPrimary:         true,
			IsActive:          true,
			CreatedAt:         s.now(),
		}
		created, err := s.bindings.Create(ctx, binding)
		if err != nil {
			return nil, fmt.Errorf("create device binding: %w", err)
		}
		if !created {
			return nil, domain.ErrEmailTaken
		}
	}

	_, sessionToken, _, err := s.sessions.ReplaceSessions(ctx, sessionservice.CreateParams{
		ProfileID:         profile.ID,
		DeviceFingerprint: in.DeviceFingerprint,
		IPAddress:         in.IPAddress,
		UserAgent:         in.UserAgent,
	}, sessiondomain.ReasonNewLogin)
	if err != nil {
		return nil, err
	}
	res, err := s.issue(ctx, acct, profile, sessionToken)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SetRefreshHint(ctx, sessionToken, security.HashRefreshToken(res.RefreshToken)); err != nil {
		return nil, err
	}
	verification, err := s.tokens.GenerateVerificationToken(security.TokenPayload{
		AccountID: acct.ID,
		Email:     acct.Email,
		Portal:    s.portal,
		ProfileID: profile.ID,
	}, s.verifyTTLHour)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	s.audit.Record(ctx, auditdomain.Event{
		Portal:     s.portal,
		EntityType: auditdomain.EntityAccount,
		EntityID:   acct.ID,
		Action:     auditdomain.ActionAccountRegistered,
		NewValues:  map[string]any{"profile_id": profile.ID, "binding_id": binding.ID},
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	})
	s.log.Info().Str("account_id", acct.ID).Str("profile_id", profile.ID).Msg("account registered")
	return &RegisterResult{AuthResult: *res, VerificationToken: verification}, nil
}

// resumeRegistration decides whether email may register. A new email returns all nils. An account left behind by
// an interrupted registration is resumed when the password matches and it is unfinished here: no profile on this
// portal yet, or a pending profile on an unverified account whose binding, if any, is the presented device and
// that never got a session with issued tokens. The parts that already exist are returned so only the missing ones
// are created. Anything else is ErrEmailTaken.
func (s *AuthService) resumeRegistration(ctx context.Context, email string, in RegisterInput) (
	*accountdomain.Account, *portaldomain.Profile, *devicedomain.Binding, error) {
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return nil, nil, nil, nil
	}
	if !s.passwords.Verify(in.Password, acct.PasswordHash) {
		return nil, nil, nil, domain.ErrEmailTaken
	}
	profile, err := s.policy.FindProfile(ctx, acct)
	if err != nil {
		return nil, nil, nil, err
	}
	if profile == nil {
		s.log.Info().Str("account_id", acct.ID).Msg("registering existing account on portal")
		return acct, nil, nil, nil
	}
	if acct.EmailVerified || profile.Status != portaldomain.StatusPending {
		return nil, nil, nil, domain.ErrEmailTaken
	}
	binding, err := s.devices.PrimaryBinding(ctx, profile.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if binding != nil && binding.DeviceFingerprint != in.DeviceFingerprint {
		return nil, nil, nil, domain.ErrEmailTaken
	}
	active, err := s.sessions.ActiveSessions(ctx, profile.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, sess := range active {
		if sess.RefreshTokenHint != "" {
			return nil, nil, nil, domain.ErrEmailTaken
		}
	}
	s.log.Info().Str("account_id", acct.ID).Str("profile_id", profile.ID).Msg("resuming unfinished registration")
	return acct, profile, binding, nil
}

// ConfirmEmail marks the account named by an email verification token as verified.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	ctx, span := s.start(ctx, "auth.confirm_email")
	defer span.End()

	claims, err := s.tokens.VerifyVerification(token)
	if err != nil || claims.Portal != s.portal {
		endSpan(span, domain.ErrInvalidOrExpiredToken)
		return domain.ErrInvalidOrExpiredToken
	}
	acct, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		endSpan(span, err)
		return fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return domain.ErrInvalidOrExpiredToken
	}
	if acct.EmailVerified {
		return nil
	}
	if err := s.accounts.MarkEmailVerified(ctx, acct.ID); err != nil {
		endSpan(span, err)
		return fmt.Errorf("mark email verified: %w", err)
	}
	s.audit.Record(ctx, auditdomain.Event{
		Portal:     s.portal,
		EntityType: auditdomain.EntityAccount,
		EntityID:   acct.ID,
		Action:     auditdomain.ActionEmailVerified,
	})
	return nil
}
