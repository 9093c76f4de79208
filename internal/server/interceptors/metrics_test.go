package interceptors

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"

	"marketplace-portal/backend/internal/identity/domain"
	"marketplace-portal/backend/internal/metrics"
)

func TestMetricsUnary(t *testing.T) {
	interceptor := MetricsUnary(map[string]bool{"/skip.Me/Check": true})
	method := "/metrics.Test/Counted"
	before := testutil.ToFloat64(metrics.RPCsTotal.WithLabelValues(method, "OK"))

	_, _ = interceptor(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: method}, okHandler)
	_, _ = interceptor(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: "/skip.Me/Check"}, okHandler)

	if got := testutil.ToFloat64(metrics.RPCsTotal.WithLabelValues(method, "OK")) - before; got != 1 {
		t.Errorf("counted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.RPCsTotal.WithLabelValues("/skip.Me/Check", "OK")); got != 0 {
		t.Errorf("skipped method counted %v times", got)
	}

	// Raw authentication errors reach this interceptor already converted when ErrorsUnary runs inside it.
	chained := func(ctx context.Context, req interface{}) (interface{}, error) {
		return ErrorsUnary()(ctx, req, &grpc.UnaryServerInfo{FullMethod: method}, func(context.Context, interface{}) (interface{}, error) {
			return nil, domain.ErrRateLimited
		})
	}
	_, _ = interceptor(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: method}, chained)
	if got := testutil.ToFloat64(metrics.RPCsTotal.WithLabelValues(method, "ResourceExhausted")); got != 1 {
		t.Errorf("ResourceExhausted count = %v, want 1", got)
	}
}
