package main

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	accountrepo "marketplace-portal/backend/internal/account/repository"
	"marketplace-portal/backend/internal/audit"
	"marketplace-portal/backend/internal/authconfig"
	"marketplace-portal/backend/internal/config"
	devicerepo "marketplace-portal/backend/internal/device/repository"
	deviceservice "marketplace-portal/backend/internal/device/service"
	identityservice "marketplace-portal/backend/internal/identity/service"
	"marketplace-portal/backend/internal/policy/engine"
	"marketplace-portal/backend/internal/portal"
	portaldomain "marketplace-portal/backend/internal/portal/domain"
	portalrepo "marketplace-portal/backend/internal/portal/repository"
	"marketplace-portal/backend/internal/ratelimit"
	ratelimitrepo "marketplace-portal/backend/internal/ratelimit/repository"
	"marketplace-portal/backend/internal/security"
	sessionrepo "marketplace-portal/backend/internal/session/repository"
	sessionservice "marketplace-portal/backend/internal/session/service"
)

type portalDeps struct {
	status  engine.StatusEvaluator
	toggles authconfig.Toggles
	redis   *redis.Client // nil counts failures from the attempt table
	audit   audit.Recorder
	log     zerolog.Logger
}

// buildPortals wires one AuthService per portal over that portal's tables. Accounts, keys and password
// hashing are shared.
func buildPortals(cfg *config.Config, conn *sql.DB, d portalDeps) ([]*identityservice.AuthService, error) {
	signer, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		return nil, fmt.Errorf("jwt keys: %w", err)
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTKeyID)
	passwords, err := security.NewPasswordService(cfg.PasswordAlgorithm, cfg.BcryptCost, security.Argon2Params{
		MemoryKB:    uint32(cfg.Argon2MemoryKB),
		Time:        uint32(cfg.Argon2Time),
		Parallelism: uint8(cfg.Argon2Parallelism),
	})
	if err != nil {
		return nil, fmt.Errorf("password service: %w", err)
	}
	accounts := accountrepo.NewPostgresRepository(conn)

	lazy := make(map[portaldomain.Type]bool)
	for _, name := range cfg.LazyDeviceBindingList() {
		t, ok := portaldomain.ParseType(name)
		if !ok {
			return nil, fmt.Errorf("LAZY_DEVICE_BINDING_PORTALS: unknown portal %q", name)
		}
		lazy[t] = true
	}

	var out []*identityservice.AuthService
	for _, t := range portaldomain.All() {
		profiles, err := portalrepo.NewPostgresRepository(conn, t)
		if err != nil {
			return nil, err
		}
		sessions, err := sessionrepo.NewPostgresRepository(conn, t)
		if err != nil {
			return nil, err
		}
		bindings, err := devicerepo.NewPostgresRepository(conn, t)
		if err != nil {
			return nil, err
		}
		attempts, err := ratelimitrepo.NewPostgresRepository(conn, t)
		if err != nil {
			return nil, err
		}

		var counter ratelimit.Counter = ratelimit.NewStoreCounter(attempts, cfg.LockoutWindow())
		if d.redis != nil {
			counter = ratelimit.NewRedisCounter(d.redis, string(t), cfg.LockoutWindow())
		}
		limiter := ratelimit.NewService(attempts, counter, ratelimit.Config{
			MaxFailedAttempts: cfg.LoginMaxFailedAttempts,
			Window:            cfg.LockoutWindow(),
		}, d.log)

		policy, err := portal.For(t, portal.Options{
			Profiles:          profiles,
			Status:            d.status,
			LazyDeviceBinding: lazy[t],
		})
		if err != nil {
			return nil, err
		}
		svc, err := identityservice.NewAuthService(identityservice.Deps{
			Policy:                    policy,
			Accounts:                  accounts,
			Passwords:                 passwords,
			Tokens:                    tokens,
			Sessions:                  sessionservice.NewService(sessions, cfg.SessionTTL(), cfg.TouchInterval(), d.log),
			Devices:                   deviceservice.NewService(bindings),
			Bindings:                  bindings,
			Limiter:                   limiter,
			Toggles:                   d.toggles,
			Audit:                     d.audit,
			Log:                       d.log,
			Expiry:                    security.TokenExpiry{Access: cfg.AccessTTL(), Refresh: cfg.RefreshTTL()},
			EmailVerificationTTLHours: cfg.EmailVerificationTTLHours,
		})
		if err != nil {
			return nil, fmt.Errorf("%s auth service: %w", t, err)
		}
		d.log.Info().Str("portal", string(t)).Bool("lazy_device_binding", lazy[t]).Msg("portal ready")
		out = append(out, svc)
	}
	return out, nil
}
