package interceptors

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"marketplace-portal/backend/internal/identity/domain"
	identityservice "marketplace-portal/backend/internal/identity/service"
	portaldomain "marketplace-portal/backend/internal/portal/domain"
	"marketplace-portal/backend/internal/security"
)

const bearerPrefix = "bearer "

// Authenticator resolves an access token into the caller for one portal. *identityservice.AuthService
// implements it.
type Authenticator interface {
	Portal() portaldomain.Type
	Authenticate(ctx context.Context, accessToken string) (*identityservice.Identity, error)
}

// AuthUnary returns a unary server interceptor that authenticates the Bearer access token from gRPC metadata
// and stores the caller in context. The token's portal claim picks the Authenticator; the session behind the
// token must still be active. publicMethods are full method names callable without a token; a token sent to
// a public method is still authenticated when valid and ignored otherwise.
func AuthUnary(auths []Authenticator, publicMethods map[string]bool, log zerolog.Logger) grpc.UnaryServerInterceptor {
	byPortal := make(map[string]Authenticator, len(auths))
	for _, a := range auths {
		byPortal[string(a.Portal())] = a
	}
	log = log.With().Str("component", "auth_interceptor").Logger()

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		token := extractBearer(ctx)
		public := publicMethods[info.FullMethod]

		if token == "" {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		id, err := authenticate(ctx, byPortal, token)
		if err != nil {
			if public {
				return handler(ctx, req)
			}
			if domain.KindOf(err) == "" {
				log.Error().Err(err).Str("method", info.FullMethod).Msg("authenticate request")
			}
			return nil, ToStatus(err)
		}
		return handler(WithIdentity(ctx, id), req)
	}
}

func authenticate(ctx context.Context, byPortal map[string]Authenticator, token string) (*identityservice.Identity, error) {
	portal, err := security.UnverifiedPortal(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	a, ok := byPortal[portal]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return a.Authenticate(ctx, token)
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
