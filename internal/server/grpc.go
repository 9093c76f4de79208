// Package server builds the gRPC server that fronts the portal services: request authentication, audit,
// metrics and error mapping interceptors plus the standard health service.
package server

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"marketplace-portal/backend/internal/audit"
	"marketplace-portal/backend/internal/server/interceptors"
)

// Health service methods; they are public and neither audited nor counted.
const (
	healthCheckMethod = "/grpc.health.v1.Health/Check"
	healthWatchMethod = "/grpc.health.v1.Health/Watch"
)

// Deps holds what the server needs from the rest of the process.
type Deps struct {
	// Authenticators resolve Bearer tokens, one per portal.
	Authenticators []interceptors.Authenticator
	// PublicMethods are full method names callable without a token, in addition to the health service.
	PublicMethods []string
	// Audit records authenticated RPCs. Nil disables RPC auditing.
	Audit audit.Recorder
	// Health is the health server to register. Nil registers a new one that always reports SERVING.
	Health *health.Server
	// Register adds the portal services.
	Register func(grpc.ServiceRegistrar)
	// Reflection registers the reflection service; meant for development.
	Reflection bool
	Log        zerolog.Logger
}

// NewServer returns a gRPC server with the interceptor chain and services registered. The chain runs metrics
// first so it sees final status codes, then error mapping, authentication and audit.
func NewServer(deps Deps, opts ...grpc.ServerOption) *grpc.Server {
	public := map[string]bool{healthCheckMethod: true, healthWatchMethod: true}
	for _, m := range deps.PublicMethods {
		public[m] = true
	}
	quiet := map[string]bool{healthCheckMethod: true, healthWatchMethod: true}

	opts = append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.MetricsUnary(quiet),
			interceptors.ErrorsUnary(),
			interceptors.AuthUnary(deps.Authenticators, public, deps.Log),
			interceptors.AuditUnary(deps.Audit, quiet),
		),
	}, opts...)
	s := grpc.NewServer(opts...)

	hs := deps.Health
	if hs == nil {
		hs = health.NewServer()
	}
	healthpb.RegisterHealthServer(s, hs)
	if deps.Register != nil {
		deps.Register(s)
	}
	if deps.Reflection {
		reflection.Register(s)
	}
	return s
}
