package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"marketplace-portal/backend/internal/metrics"
)

// MetricsUnary counts every RPC by method and status code. skipMethods are not counted.
func MetricsUnary(skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if !skipMethods[info.FullMethod] {
			metrics.RPCsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		}
		return resp, err
	}
}
