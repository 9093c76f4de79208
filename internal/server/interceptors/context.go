package interceptors

import (
	"context"

	identityservice "marketplace-portal/backend/internal/identity/service"
)

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// WithIdentity returns a context carrying the authenticated caller.
func WithIdentity(ctx context.Context, id *identityservice.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the authenticated caller, or nil and false for public calls.
func GetIdentity(ctx context.Context) (*identityservice.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*identityservice.Identity)
	return id, ok && id != nil
}

// GetProfileID returns the caller's portal profile id.
func GetProfileID(ctx context.Context) (string, bool) {
	if id, ok := GetIdentity(ctx); ok {
		return id.ProfileID, true
	}
	return "", false
}

// GetPortal returns the portal the caller authenticated against.
func GetPortal(ctx context.Context) (string, bool) {
	if id, ok := GetIdentity(ctx); ok {
		return id.Portal, true
	}
	return "", false
}

// GetSessionID returns the id of the caller's session row.
func GetSessionID(ctx context.Context) (string, bool) {
	if id, ok := GetIdentity(ctx); ok {
		return id.SessionID, true
	}
	return "", false
}
