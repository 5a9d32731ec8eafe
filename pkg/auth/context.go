package auth

import (
	"context"

	"github.com/rhuss/pforte/pkg/identity"
)

// principalKey is a private type for the principal context key.
type principalKey struct{}

// SetPrincipal stores the authenticated principal in the context.
func SetPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the authenticated principal.
// Returns nil if the request did not pass an authentication middleware.
func PrincipalFromContext(ctx context.Context) *Principal {
	if v, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return v
	}
	return nil
}

// AccountFromContext retrieves the authenticated account, or nil.
func AccountFromContext(ctx context.Context) *identity.Account {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.Account
	}
	return nil
}

// APIKeyFromContext retrieves the API key record the request authenticated
// with. Returns nil for unauthenticated requests and for requests that came
// through the session-token scheme.
func APIKeyFromContext(ctx context.Context) *identity.APIKey {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.Key
	}
	return nil
}
