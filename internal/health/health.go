// Package health reports readiness through the standard gRPC health service.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger checks a backing store, e.g. *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the account-status policy evaluates, e.g. *engine.OPAEvaluator.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// PingFunc adapts a function to Pinger, e.g. a Redis client's Ping.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Checker runs the readiness probes. Nil probes are skipped.
type Checker struct {
	DB     Pinger
	Policy PolicyChecker
	Redis  Pinger
	// Timeout bounds each Check; default 3s.
	Timeout time.Duration
}

// Check returns the error of the first failing check.
func (c *Checker) Check(ctx context.Context) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.DB != nil {
		if err := c.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if c.Policy != nil {
		if err := c.Policy.HealthCheck(ctx); err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.PingContext(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Update runs Check once and sets the overall ("") serving status on hs.
func (c *Checker) Update(ctx context.Context, hs *health.Server, log zerolog.Logger) {
	if err := c.Check(ctx); err != nil {
		log.Warn().Err(err).Msg("readiness check failed")
		hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}

// Watch runs Update every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, hs *health.Server, interval time.Duration, log zerolog.Logger) {
	log = log.With().Str("component", "health").Logger()
	c.Update(ctx, hs, log)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Update(ctx, hs, log)
		}
	}
}
