package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rhuss/pforte/pkg/identity"
)

// mockVerifier is a test verifier with a fixed outcome.
type mockVerifier struct {
	principal *Principal
	rejection *Rejection
}

func (m *mockVerifier) Verify(_ context.Context, _ *http.Request) (*Principal, *Rejection) {
	return m.principal, m.rejection
}

// panicVerifier simulates an unclassified fault below the pipeline boundary.
type panicVerifier struct{}

func (panicVerifier) Verify(_ context.Context, _ *http.Request) (*Principal, *Rejection) {
	panic("store client exploded")
}

// denyLimiter rejects every request.
type denyLimiter struct{}

func (denyLimiter) Allow(_ context.Context, _ *Principal) error {
	return ErrTooManyRequests
}

func activePrincipal() *Principal {
	return &Principal{Account: &identity.Account{ID: "u1", Email: "u1@example.com", Active: true}}
}

func TestMiddleware_BypassEndpoint(t *testing.T) {
	mw := Middleware(&mockVerifier{rejection: Reject(CodeNoToken, "no session token provided")}, nil, []string{"/healthz"})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("bypass endpoint: status = %d, want 200", rec.Code)
	}
}

func TestMiddleware_Rejection(t *testing.T) {
	mw := Middleware(&mockVerifier{rejection: Reject(CodeTokenExpired, "session token expired")}, nil, DefaultBypassEndpoints)

	nextCalled := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest("GET", "/v1/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if nextCalled {
		t.Error("handler ran despite rejection")
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if body.Error.Code != CodeTokenExpired {
		t.Errorf("code = %q, want %q", body.Error.Code, CodeTokenExpired)
	}
}

func TestMiddleware_Success_AttachesPrincipal(t *testing.T) {
	mw := Middleware(&mockVerifier{principal: activePrincipal()}, nil, DefaultBypassEndpoints)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := AccountFromContext(r.Context())
		if account == nil || account.ID != "u1" {
			t.Error("expected account u1 in context")
		}
		if APIKeyFromContext(r.Context()) != nil {
			t.Error("session path must not attach a key record")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMiddleware_NilPrincipal_ServiceError(t *testing.T) {
	// A verifier reporting success without an account is an internal bug,
	// surfaced as the generic service fault.
	mw := Middleware(&mockVerifier{}, nil, DefaultBypassEndpoints)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestMiddleware_PanicDowngraded(t *testing.T) {
	mw := Middleware(panicVerifier{}, nil, DefaultBypassEndpoints)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if body.Error.Code != CodeServiceError {
		t.Errorf("code = %q, want %q", body.Error.Code, CodeServiceError)
	}
	if body.Error.Message == "store client exploded" {
		t.Error("internal fault detail leaked to the caller")
	}
}

func TestMiddleware_RateLimit_Exceeded(t *testing.T) {
	mw := Middleware(&mockVerifier{principal: activePrincipal()}, denyLimiter{}, DefaultBypassEndpoints)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}
