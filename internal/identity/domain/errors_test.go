package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want Kind
	}{
		{"sentinel", ErrDeviceMismatch, KindDeviceMismatch},
		{"wrapped", fmt.Errorf("login: %w", ErrRateLimited), KindRateLimited},
		{"custom invalid input", InvalidInput("email is required"), KindInvalidInput},
		{"plain error", errors.New("db down"), ""},
		{"nil", nil, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	if !errors.Is(InvalidInput("password too short"), ErrInvalidInput) {
		t.Error("InvalidInput should match ErrInvalidInput")
	}
	if errors.Is(ErrAccountPending, ErrAccountSuspended) {
		t.Error("different kinds must not match")
	}
	if errors.Is(ErrInvalidCredentials, errors.New("invalid email or password")) {
		t.Error("plain errors must not match")
	}
}

func TestUnknownEmailAndWrongPasswordLookIdentical(t *testing.T) {
	// Both paths return the same sentinel; the message never names which check failed.
	if ErrInvalidCredentials.Error() != "invalid email or password" {
		t.Errorf("message = %q", ErrInvalidCredentials.Error())
	}
}
