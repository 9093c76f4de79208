package server

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func dial(t *testing.T, s *grpc.Server) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewServer_HealthIsPublic(t *testing.T) {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	conn := dial(t, NewServer(Deps{Health: hs, Log: zerolog.Nop()}))

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("status = %v, want NOT_SERVING", resp.GetStatus())
	}
}

// portalServiceDesc describes a stand-in portal service with one unary method, Check, that counts its calls.
func portalServiceDesc(calls *int) *grpc.ServiceDesc {
	const fullMethod = "/marketplace.test.v1.Orders/Check"
	return &grpc.ServiceDesc{
		ServiceName: "marketplace.test.v1.Orders",
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Check",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(healthpb.HealthCheckRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				handler := func(ctx context.Context, req any) (any, error) {
					*calls++
					return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
				}
				if interceptor == nil {
					return handler(ctx, in)
				}
				return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, handler)
			},
		}},
		Metadata: "orders_test.proto",
	}
}

func TestNewServer_RegisteredServicesRequireAuth(t *testing.T) {
	var calls int
	s := NewServer(Deps{
		Log: zerolog.Nop(),
		Register: func(r grpc.ServiceRegistrar) {
			r.RegisterService(portalServiceDesc(&calls), struct{}{})
		},
	})
	conn := dial(t, s)

	err := conn.Invoke(context.Background(), "/marketplace.test.v1.Orders/Check", &healthpb.HealthCheckRequest{}, &healthpb.HealthCheckResponse{})
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("code = %v, want Unauthenticated", status.Code(err))
	}
	if calls != 0 {
		t.Errorf("handler calls = %d, want 0", calls)
	}
}

func TestNewServer_PublicMethodsSkipAuth(t *testing.T) {
	var calls int
	s := NewServer(Deps{
		Log:           zerolog.Nop(),
		PublicMethods: []string{"/marketplace.test.v1.Orders/Check"},
		Register: func(r grpc.ServiceRegistrar) {
			r.RegisterService(portalServiceDesc(&calls), struct{}{})
		},
	})
	conn := dial(t, s)

	resp := &healthpb.HealthCheckResponse{}
	if err := conn.Invoke(context.Background(), "/marketplace.test.v1.Orders/Check", &healthpb.HealthCheckRequest{}, resp); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if calls != 1 || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("calls = %d, status = %v; want 1, SERVING", calls, resp.GetStatus())
	}
}
