package interceptors

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"marketplace-portal/backend/internal/audit"
	"marketplace-portal/backend/internal/audit/domain"
)

// AuditUnary returns a unary server interceptor that records an audit event after each authenticated RPC.
// skipMethods is the set of full method names to not audit (e.g. health checks). Recording is best-effort and
// never changes the RPC result.
func AuditUnary(rec audit.Recorder, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if rec == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		id, ok := GetIdentity(ctx)
		if !ok {
			return resp, err
		}
		ma := audit.ParseFullMethod(info.FullMethod)
		rec.Record(ctx, domain.Event{
			Portal:     id.Portal,
			EntityType: domain.EntityRPC,
			EntityID:   info.FullMethod,
			Action:     ma.Action,
			NewValues: map[string]any{
				"resource":   ma.Resource,
				"profile_id": id.ProfileID,
				"session_id": id.SessionID,
				"code":       status.Code(ToStatus(err)).String(),
			},
			IPAddress: ClientIP(ctx),
			UserAgent: UserAgent(ctx),
		})
		return resp, err
	}
}

// ClientIP returns the client IP from gRPC metadata (x-forwarded-for, x-real-ip) or peer, or "unknown".
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				if i := strings.Index(s, ","); i > 0 {
					s = strings.TrimSpace(s[:i])
				}
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}

// UserAgent returns the caller's user agent from gRPC metadata, or "".
func UserAgent(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get("user-agent"); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
