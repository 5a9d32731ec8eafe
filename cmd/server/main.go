// Command server runs the pforte authentication gateway.
//
// Configuration is loaded from a YAML file (see pkg/config for discovery
// order) with PFORTE_* environment overrides. The minimum viable setup is a
// token secret and a seeded memory store:
//
//	PFORTE_TOKEN_SECRET=... ./server -config config.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/pforte/pkg/auth"
	"github.com/rhuss/pforte/pkg/auth/apikey"
	"github.com/rhuss/pforte/pkg/auth/token"
	"github.com/rhuss/pforte/pkg/config"
	"github.com/rhuss/pforte/pkg/identity"
	"github.com/rhuss/pforte/pkg/identity/memory"
	"github.com/rhuss/pforte/pkg/identity/postgres"
	"github.com/rhuss/pforte/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create the identity store.
	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating identity store: %w", err)
	}
	defer closeStore()

	// Create the two pipeline variants.
	sessionVerifier := token.New(token.Config{
		Secret: []byte(cfg.Auth.TokenSecret),
		Issuer: cfg.Auth.TokenIssuer,
		Leeway: cfg.Auth.TokenLeeway,
	}, store)
	keyVerifier := apikey.New(store)

	var limiter auth.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = auth.NewInProcessLimiter(cfg.RateLimit.RequestsPerMinute)
		slog.Info("rate limiting enabled", "rpm", cfg.RateLimit.RequestsPerMinute)
	}

	bypass := cfg.Auth.BypassEndpoints
	if bypass == nil {
		bypass = auth.DefaultBypassEndpoints
	}

	sessionAuth := auth.Middleware(sessionVerifier, limiter, bypass)
	keyAuth := auth.Middleware(keyVerifier, limiter, bypass)

	// Build the route surface.
	mux := http.NewServeMux()
	mux.Handle("GET /v1/me", sessionAuth(http.HandlerFunc(handleMe)))
	mux.Handle("GET /v1/key", keyAuth(http.HandlerFunc(handleKey)))
	mux.Handle("GET /v1/data", keyAuth(auth.RequirePermission("data:read")(http.HandlerFunc(handleData))))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      observability.MetricsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in background.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Type)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error.
	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// newStore builds the configured identity store. The memory store is seeded
// from config; raw seed keys are hashed immediately and not retained.
func newStore(ctx context.Context, cfg *config.Config) (identity.Store, func(), error) {
	if cfg.Storage.Type == "postgres" {
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("identity store connected", "type", "postgres")
		return store, store.Close, nil
	}

	store := memory.New()
	for _, a := range cfg.Storage.Seed.Accounts {
		active := a.Active == nil || *a.Active
		store.AddAccount(identity.Account{
			ID:        a.ID,
			Email:     a.Email,
			Name:      a.Name,
			Active:    active,
			CreatedAt: time.Now(),
		})
	}
	for _, k := range cfg.Storage.Seed.Keys {
		store.AddKey(identity.APIKey{
			ID:          k.ID,
			AccountID:   k.AccountID,
			KeyHash:     apikey.HashKey(k.Key),
			Active:      true,
			Permissions: k.Permissions,
			CreatedAt:   time.Now(),
		})
	}
	slog.Info("identity store seeded", "type", "memory",
		"accounts", len(cfg.Storage.Seed.Accounts), "keys", len(cfg.Storage.Seed.Keys))
	return store, func() {}, nil
}

// handleMe returns the authenticated account's profile. Session pipeline.
func handleMe(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	writeJSON(w, map[string]any{
		"id":    account.ID,
		"email": account.Email,
		"name":  account.Name,
	})
}

// handleKey returns metadata for the key the request authenticated with.
func handleKey(w http.ResponseWriter, r *http.Request) {
	key := auth.APIKeyFromContext(r.Context())
	writeJSON(w, map[string]any{
		"id":          key.ID,
		"name":        key.Name,
		"account_id":  key.AccountID,
		"permissions": key.Permissions,
	})
}

// handleData is a sample capability-gated resource.
func handleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"data": []string{}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
