// Package token provides the session-token credential verifier. Tokens are
// HMAC-signed JWTs validated against an injected signing secret; the claim
// subject is resolved to an account through the identity store.
package token

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/pforte/pkg/auth"
	"github.com/rhuss/pforte/pkg/identity"
)

// Config holds the token verifier configuration.
type Config struct {
	// Secret is the HMAC signing secret shared with the token issuer
	// (required, non-empty).
	Secret []byte

	// Issuer is the expected iss claim. If empty, issuer is not validated.
	Issuer string

	// Leeway tolerates clock skew when checking expiry. Default: none.
	Leeway time.Duration
}

// Verifier validates session tokens and resolves their subjects.
type Verifier struct {
	config Config
	store  identity.Store
}

// Ensure Verifier implements auth.CredentialVerifier at compile time.
var _ auth.CredentialVerifier = (*Verifier)(nil)

// New creates a session-token verifier with the given configuration.
func New(cfg Config, store identity.Store) *Verifier {
	return &Verifier{config: cfg, store: store}
}

// Verify extracts a bearer token from the Authorization header, validates
// its signature and expiry, and resolves the subject account.
//
// Rejection outcomes:
//   - NO_TOKEN: no bearer credential in the request
//   - TOKEN_EXPIRED: signature checks out but the token is past its expiry
//   - INVALID_TOKEN: bad signature, malformed payload, missing or unknown subject
//   - ACCOUNT_DEACTIVATED: subject resolves to an inactive account
//   - AUTH_SERVICE_ERROR: identity store infrastructure failure
func (v *Verifier) Verify(ctx context.Context, r *http.Request) (*auth.Principal, *auth.Rejection) {
	raw := auth.BearerToken(r.Header)
	if raw == "" {
		return nil, auth.Reject(auth.CodeNoToken, "no session token provided")
	}

	claims, rej := v.Decode(raw)
	if rej != nil {
		return nil, rej
	}

	account, err := v.store.FindAccountByID(ctx, claims.Subject)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, auth.Reject(auth.CodeInvalidToken, "invalid session token")
	}
	if err != nil {
		slog.Error("account lookup failed", "subject", claims.Subject, "error", err)
		return nil, auth.ServiceError()
	}

	if !account.Active {
		return nil, auth.Reject(auth.CodeAccountDeactivated, "account is deactivated")
	}

	return &auth.Principal{Account: account}, nil
}

// Decode verifies the token's signature and expiry and returns its claim
// set. Pure verification: no store access, no side effects.
//
// Expiry is checked against the decoded claims before signature
// verification, so an expired token is classified TOKEN_EXPIRED even when
// its signature is also invalid.
func (v *Verifier) Decode(raw string) (*jwtlib.RegisteredClaims, *auth.Rejection) {
	// Decode the payload without verifying the signature to classify
	// expiry first.
	unverified := &jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, unverified); err != nil {
		slog.Debug("token decode failed", "error", err)
		return nil, auth.Reject(auth.CodeInvalidToken, "invalid session token")
	}
	if unverified.ExpiresAt != nil && time.Now().After(unverified.ExpiresAt.Add(v.config.Leeway)) {
		return nil, auth.Reject(auth.CodeTokenExpired, "session token expired")
	}

	claims := &jwtlib.RegisteredClaims{}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(v.config.Issuer))
	}
	if v.config.Leeway > 0 {
		opts = append(opts, jwtlib.WithLeeway(v.config.Leeway))
	}

	_, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (interface{}, error) {
		return v.config.Secret, nil
	}, opts...)

	if err != nil {
		slog.Debug("token validation failed", "error", err)
		return nil, auth.Reject(auth.CodeInvalidToken, "invalid session token")
	}

	if claims.Subject == "" {
		return nil, auth.Reject(auth.CodeInvalidToken, "token missing subject")
	}

	return claims, nil
}
