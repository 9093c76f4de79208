package interceptors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"marketplace-portal/backend/internal/identity/domain"
)

func TestToStatus(t *testing.T) {
	testCases := []struct {
		err  error
		want codes.Code
	}{
		{domain.ErrInvalidCredentials, codes.Unauthenticated},
		{domain.ErrSessionRevokedOrExpired, codes.Unauthenticated},
		{domain.ErrDeviceMismatch, codes.PermissionDenied},
		{domain.ErrAccountSuspended, codes.PermissionDenied},
		{domain.ErrRateLimited, codes.ResourceExhausted},
		{domain.InvalidInput("Email failed required validation"), codes.InvalidArgument},
		{domain.ErrEmailTaken, codes.AlreadyExists},
		{domain.ErrRegistrationClosed, codes.FailedPrecondition},
		{fmt.Errorf("login: %w", domain.ErrDeviceNotBound), codes.PermissionDenied},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("pq: connection refused"), codes.Internal},
		{status.Error(codes.NotFound, "quote not found"), codes.NotFound},
	}
	for _, tc := range testCases {
		if got := status.Code(ToStatus(tc.err)); got != tc.want {
			t.Errorf("ToStatus(%v) code = %v, want %v", tc.err, got, tc.want)
		}
	}
	if ToStatus(nil) != nil {
		t.Error("ToStatus(nil) != nil")
	}
}

func TestToStatus_HidesInternalDetail(t *testing.T) {
	st, _ := status.FromError(ToStatus(errors.New("get account: dial tcp 10.0.0.5:5432")))
	if st.Message() != "internal error" {
		t.Errorf("message = %q, want %q", st.Message(), "internal error")
	}
	st, _ = status.FromError(ToStatus(domain.ErrDeviceMismatch))
	if st.Message() != domain.ErrDeviceMismatch.Message {
		t.Errorf("message = %q, want %q", st.Message(), domain.ErrDeviceMismatch.Message)
	}
}

func TestErrorsUnary(t *testing.T) {
	interceptor := ErrorsUnary()
	_, err := interceptor(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: "/test.Service/Login"},
		func(ctx context.Context, req interface{}) (interface{}, error) { return nil, domain.ErrRateLimited })
	if status.Code(err) != codes.ResourceExhausted {
		t.Errorf("code = %v, want %v", status.Code(err), codes.ResourceExhausted)
	}
}
