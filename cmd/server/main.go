package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/health"

	"marketplace-portal/backend/internal/audit"
	auditrepo "marketplace-portal/backend/internal/audit/repository"
	"marketplace-portal/backend/internal/authconfig"
	"marketplace-portal/backend/internal/config"
	"marketplace-portal/backend/internal/db"
	"marketplace-portal/backend/internal/db/migrate"
	healthcheck "marketplace-portal/backend/internal/health"
	"marketplace-portal/backend/internal/logger"
	"marketplace-portal/backend/internal/metrics"
	"marketplace-portal/backend/internal/policy/engine"
	"marketplace-portal/backend/internal/ratelimit"
	"marketplace-portal/backend/internal/server"
	"marketplace-portal/backend/internal/server/interceptors"
	telemetryotel "marketplace-portal/backend/internal/telemetry/otel"
)

const serviceName = "marketplace-auth"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: serviceName})
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: serviceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: %w", err)
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer conn.Close()

	toggles := authconfig.FromConfig(cfg)
	toggles.LogWarnings(log)

	status, err := statusEvaluator(ctx, cfg)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RateLimitBackend == "redis" {
		redisClient, err = ratelimit.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
	}

	kafkaSink := audit.NewKafkaSink(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic, log)
	defer func() {
		if err := kafkaSink.Close(); err != nil {
			log.Warn().Err(err).Msg("close kafka audit sink")
		}
	}()
	recorders := audit.Multi{audit.NewLogger(auditrepo.NewPostgresRepository(conn), log)}
	if kafkaSink != nil {
		recorders = append(recorders, kafkaSink)
	}
	recorder := audit.NewAsync(recorders)
	defer func() {
		waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		recorder.Wait(waitCtx)
	}()

	services, err := buildPortals(cfg, conn, portalDeps{
		status:  status,
		toggles: toggles,
		redis:   redisClient,
		audit:   recorder,
		log:     log,
	})
	if err != nil {
		return err
	}
	authenticators := make([]interceptors.Authenticator, 0, len(services))
	for _, svc := range services {
		authenticators = append(authenticators, svc)
	}

	hs := health.NewServer()
	checker := &healthcheck.Checker{DB: conn, Policy: status}
	if redisClient != nil {
		checker.Redis = healthcheck.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	go checker.Watch(ctx, hs, 15*time.Second, log)

	srv := server.NewServer(server.Deps{
		Authenticators: authenticators,
		Audit:          recorder,
		Health:         hs,
		Reflection:     cfg.Env != "production",
		Log:            log,
	})
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = metrics.NewServer(cfg.MetricsAddr)
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Int("portals", len(services)).Msg("gRPC server listening")
		serveErr <- srv.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	hs.Shutdown()
	srv.GracefulStop()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

func statusEvaluator(ctx context.Context, cfg *config.Config) (*engine.OPAEvaluator, error) {
	policy := engine.DefaultStatusPolicy
	if cfg.AccountStatusPolicyFile != "" {
		p, err := engine.LoadPolicyFile(cfg.AccountStatusPolicyFile)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	ev, err := engine.NewOPAEvaluator(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("account status policy: %w", err)
	}
	if err := ev.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("account status policy: %w", err)
	}
	return ev, nil
}

