package interceptors

import (
	"context"
	"testing"

	identityservice "marketplace-portal/backend/internal/identity/service"
)

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetIdentity(ctx); ok {
		t.Error("GetIdentity on empty context reported ok")
	}
	if _, ok := GetProfileID(ctx); ok {
		t.Error("GetProfileID on empty context reported ok")
	}

	ctx = WithIdentity(ctx, &identityservice.Identity{ProfileID: "prof-1", Portal: "supplier", SessionID: "s-1"})
	if got, _ := GetProfileID(ctx); got != "prof-1" {
		t.Errorf("GetProfileID = %q, want prof-1", got)
	}
	if got, _ := GetPortal(ctx); got != "supplier" {
		t.Errorf("GetPortal = %q, want supplier", got)
	}
	if got, _ := GetSessionID(ctx); got != "s-1" {
		t.Errorf("GetSessionID = %q, want s-1", got)
	}

	if _, ok := GetIdentity(WithIdentity(context.Background(), nil)); ok {
		t.Error("GetIdentity with nil identity reported ok")
	}
}
