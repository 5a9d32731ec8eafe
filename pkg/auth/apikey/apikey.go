// Package apikey provides the API key credential verifier. Keys carry a
// fixed sk_ prefix and are resolved against the identity store by their
// SHA-256 digest; the raw key material is never stored or logged.
package apikey

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rhuss/pforte/pkg/auth"
	"github.com/rhuss/pforte/pkg/identity"
	"github.com/rhuss/pforte/pkg/observability"
)

// KeyPrefix is the required literal prefix of every raw API key.
const KeyPrefix = "sk_"

// defaultTouchTimeout bounds the detached last-used update.
const defaultTouchTimeout = 5 * time.Second

// HashKey computes the hex-encoded SHA-256 digest of a raw key. Issuance
// and verification must use this same function so stored hashes match.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Verifier validates API keys against the identity store.
type Verifier struct {
	store        identity.Store
	touchTimeout time.Duration
}

// Ensure Verifier implements auth.CredentialVerifier at compile time.
var _ auth.CredentialVerifier = (*Verifier)(nil)

// New creates an API key verifier backed by the given store.
func New(store identity.Store) *Verifier {
	return &Verifier{store: store, touchTimeout: defaultTouchTimeout}
}

// Verify extracts and validates the request's API key, short-circuiting on
// the first failure:
//
//   - NO_API_KEY: no credential in X-API-Key or Authorization
//   - INVALID_API_KEY_FORMAT: credential lacks the sk_ prefix (no store lookup)
//   - INVALID_API_KEY: no active key record matches the digest
//   - USER_DEACTIVATED: key record is active but its owning account is not
//   - AUTH_SERVICE_ERROR: identity store infrastructure failure
//
// On success the record's last-used timestamp is updated by a detached
// goroutine; the request path does not wait for it and its failure is
// logged and counted, never escalated.
func (v *Verifier) Verify(ctx context.Context, r *http.Request) (*auth.Principal, *auth.Rejection) {
	raw := auth.RawAPIKey(r.Header)
	if raw == "" {
		return nil, auth.Reject(auth.CodeNoAPIKey, "no API key provided")
	}

	if !strings.HasPrefix(raw, KeyPrefix) {
		return nil, auth.Reject(auth.CodeInvalidAPIKeyFormat, "malformed API key")
	}

	key, account, err := v.store.FindActiveKeyByHash(ctx, HashKey(raw))
	if errors.Is(err, identity.ErrNotFound) {
		return nil, auth.Reject(auth.CodeInvalidAPIKey, "invalid API key")
	}
	if err != nil {
		slog.Error("API key lookup failed", "error", err)
		return nil, auth.ServiceError()
	}

	if account == nil || !account.Active {
		return nil, auth.Reject(auth.CodeUserDeactivated, "account is deactivated")
	}

	go v.touch(key.ID)

	return &auth.Principal{Account: account, Key: key}, nil
}

// touch updates the key's last-used timestamp with its own context so it
// outlives the request. Last-write-wins across overlapping requests.
func (v *Verifier) touch(keyID string) {
	ctx, cancel := context.WithTimeout(context.Background(), v.touchTimeout)
	defer cancel()

	if err := v.store.TouchKey(ctx, keyID); err != nil {
		slog.Error("API key last-used update failed", "key_id", keyID, "error", err)
		observability.KeyTouchFailuresTotal.Inc()
	}
}
