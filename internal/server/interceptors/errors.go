package interceptors

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"marketplace-portal/backend/internal/identity/domain"
)

// ToStatus converts an authentication error into a gRPC status error. Failure kinds keep their generic
// message; anything else becomes Internal without detail. Errors that already carry a status pass through.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var e *domain.Error
	if errors.As(err, &e) {
		return status.Error(kindCode(e.Kind), e.Message)
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}
	return status.Error(codes.Internal, "internal error")
}

func kindCode(k domain.Kind) codes.Code {
	switch k {
	case domain.KindInvalidCredentials, domain.KindInvalidOrExpiredToken,
		domain.KindSessionRevokedOrExpired, domain.KindUnauthenticated:
		return codes.Unauthenticated
	case domain.KindRateLimited:
		return codes.ResourceExhausted
	case domain.KindInvalidInput:
		return codes.InvalidArgument
	case domain.KindEmailTaken:
		return codes.AlreadyExists
	case domain.KindRegistrationClosed:
		return codes.FailedPrecondition
	default:
		return codes.PermissionDenied
	}
}

// ErrorsUnary converts handler errors with ToStatus so portal handlers can return authentication errors as is.
func ErrorsUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		return resp, ToStatus(err)
	}
}
