// Package integration provides end-to-end tests for the pforte gateway.
//
// Tests run against a real HTTP server started in-process with
// net/http/httptest, backed by a seeded in-memory identity store, and
// exercise both pipeline variants through real requests.
package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/pforte/pkg/auth"
	"github.com/rhuss/pforte/pkg/auth/apikey"
	"github.com/rhuss/pforte/pkg/auth/token"
	"github.com/rhuss/pforte/pkg/identity"
	"github.com/rhuss/pforte/pkg/identity/memory"
)

// Test fixtures shared across all integration tests.
const (
	tokenSecret = "integration-test-secret"

	rawKeyReader = "sk_test_reader"
	rawKeyAdmin  = "sk_test_admin"
	rawKeyOrphan = "sk_test_orphan" // active key, deactivated owner
)

// testEnv holds the shared server for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the gateway server and its seeded store.
type TestEnvironment struct {
	Server *httptest.Server
	Store  *memory.Store
}

// TestMain starts the gateway before running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Server.Close()
	os.Exit(code)
}

// setupTestEnvironment wires the gateway the same way cmd/server does:
// seeded memory store, both pipeline variants, and a gated route.
func setupTestEnvironment() *TestEnvironment {
	store := memory.New()
	store.AddAccount(identity.Account{ID: "u1", Email: "u1@example.com", Name: "User One", Active: true})
	store.AddAccount(identity.Account{ID: "u2", Email: "u2@example.com", Active: false})
	store.AddKey(identity.APIKey{
		ID: "k-reader", AccountID: "u1", KeyHash: apikey.HashKey(rawKeyReader),
		Active: true, Permissions: []string{"data:read"},
	})
	store.AddKey(identity.APIKey{
		ID: "k-admin", AccountID: "u1", KeyHash: apikey.HashKey(rawKeyAdmin),
		Active: true, Permissions: []string{identity.PermissionAdmin},
	})
	store.AddKey(identity.APIKey{
		ID: "k-orphan", AccountID: "u2", KeyHash: apikey.HashKey(rawKeyOrphan),
		Active: true, Permissions: []string{"data:read"},
	})

	sessionAuth := auth.Middleware(token.New(token.Config{Secret: []byte(tokenSecret)}, store), nil, auth.DefaultBypassEndpoints)
	keyAuth := auth.Middleware(apikey.New(store), nil, auth.DefaultBypassEndpoints)

	mux := http.NewServeMux()
	mux.Handle("GET /v1/me", sessionAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := auth.AccountFromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": account.ID, "email": account.Email})
	})))
	mux.Handle("GET /v1/data", keyAuth(auth.RequirePermission("data:read")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))))
	mux.Handle("DELETE /v1/data", keyAuth(auth.RequirePermission("data:write")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	return &TestEnvironment{
		Server: httptest.NewServer(mux),
		Store:  store,
	}
}

// signSessionToken creates a valid HS256 session token for a subject.
func signSessionToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(expiresIn)),
	})
	s, err := tok.SignedString([]byte(tokenSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return s
}

// doRequest performs a request with optional headers against the gateway.
func doRequest(t *testing.T, method, path string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, testEnv.Server.URL+path, nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// rejectionCode reads the machine code from a rejection response body.
func rejectionCode(t *testing.T, resp *http.Response) string {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshaling rejection %q: %v", data, err)
	}
	return body.Error.Code
}
