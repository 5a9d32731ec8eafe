package auth

import (
	"context"
	"net/http"

	"github.com/rhuss/pforte/pkg/identity"
)

// Principal represents an authenticated caller.
type Principal struct {
	// Account is the resolved owning account (required, active).
	Account *identity.Account

	// Key is the API key record the request authenticated with. It is set
	// only by the API key scheme; the session-token scheme leaves it nil.
	Key *identity.APIKey
}

// CredentialVerifier runs one scheme's extract-verify-resolve sequence
// against a request. On success it returns the authenticated principal; on
// any failure it returns a classified rejection. Exactly one of the two
// results is non-nil.
//
// A verifier must classify every expected failure itself. Only identity
// store infrastructure faults surface as CodeServiceError.
type CredentialVerifier interface {
	Verify(ctx context.Context, r *http.Request) (*Principal, *Rejection)
}
