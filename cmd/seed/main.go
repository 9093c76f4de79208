// seed creates the first admin account, its admin profile and primary device binding. Admin registration is
// closed, so this is how a fresh deployment gets an operator. Idempotent: exits if the email already exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	accountdomain "marketplace-portal/backend/internal/account/domain"
	accountrepo "marketplace-portal/backend/internal/account/repository"
	"marketplace-portal/backend/internal/config"
	"marketplace-portal/backend/internal/db"
	devicedomain "marketplace-portal/backend/internal/device/domain"
	devicerepo "marketplace-portal/backend/internal/device/repository"
	"marketplace-portal/backend/internal/logger"
	"marketplace-portal/backend/internal/portal"
	portaldomain "marketplace-portal/backend/internal/portal/domain"
	portalrepo "marketplace-portal/backend/internal/portal/repository"
	"marketplace-portal/backend/internal/security"
)

type seedInput struct {
	email       string
	password    string
	name        string
	fingerprint string
	ip          string
}

func main() {
	var in seedInput
	flag.StringVar(&in.email, "email", "admin@example.com", "admin account email")
	flag.StringVar(&in.password, "password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password (default $SEED_ADMIN_PASSWORD)")
	flag.StringVar(&in.name, "name", "Platform Admin", "admin display name")
	flag.StringVar(&in.fingerprint, "fingerprint", "dev-fp-admin", "device fingerprint bound as the admin's primary device")
	flag.StringVar(&in.ip, "ip", "127.0.0.1", "registered IP for the binding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "seed"})
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if len(in.password) < 8 {
		log.Fatal().Msg("admin password must be at least 8 characters (-password or SEED_ADMIN_PASSWORD)")
	}
	if err := seed(context.Background(), cfg, in, log); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func seed(ctx context.Context, cfg *config.Config, in seedInput, log zerolog.Logger) error {
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()

	accounts := accountrepo.NewPostgresRepository(conn)
	existing, err := accounts.GetByEmail(ctx, in.email)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if existing != nil {
		log.Info().Str("email", in.email).Msg("account exists, skipping")
		return nil
	}

	passwords, err := security.NewPasswordService(cfg.PasswordAlgorithm, cfg.BcryptCost, security.Argon2Params{
		MemoryKB:    uint32(cfg.Argon2MemoryKB),
		Time:        uint32(cfg.Argon2Time),
		Parallelism: uint8(cfg.Argon2Parallelism),
	})
	if err != nil {
		return err
	}
	hash, salt, err := passwords.Hash(in.password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	acct := &accountdomain.Account{
		ID:            uuid.New().String(),
		Email:         accountdomain.NormalizeEmail(in.email),
		PasswordHash:  hash,
		PasswordSalt:  salt,
		Roles:         []string{portal.RoleAdmin},
		Status:        "ACTIVE",
		EmailVerified: true,
	}
	if err := accounts.Create(ctx, acct); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	profiles, err := portalrepo.NewPostgresRepository(conn, portaldomain.Admin)
	if err != nil {
		return err
	}
	profile := &portaldomain.Profile{
		ID:          uuid.New().String(),
		AccountID:   acct.ID,
		Portal:      portaldomain.Admin,
		Status:      portaldomain.StatusActive,
		DisplayName: in.name,
		CreatedAt:   now,
	}
	if err := profiles.Create(ctx, profile); err != nil {
		return fmt.Errorf("create admin profile: %w", err)
	}

	bindings, err := devicerepo.NewPostgresRepository(conn, portaldomain.Admin)
	if err != nil {
		return err
	}
	if _, err := bindings.Create(ctx, &devicedomain.Binding{
		ID:                uuid.New().String(),
		ProfileID:         profile.ID,
		DeviceFingerprint: in.fingerprint,
		RegisteredIP:      in.ip,
		IsPrimary:         true,
		IsActive:          true,
		CreatedAt:         now,
	}); err != nil {
		return fmt.Errorf("create device binding: %w", err)
	}

	log.Info().Str("email", acct.Email).Str("profile_id", profile.ID).Str("fingerprint", in.fingerprint).Msg("admin seeded")
	return nil
}
