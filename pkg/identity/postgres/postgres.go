// Package postgres provides a PostgreSQL implementation of identity.Store.
// It uses pgx/v5 for connection pooling and keeps API key permissions as a
// TEXT[] column indexed by the key's SHA-256 digest.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/pforte/pkg/identity"
)

// Store is a PostgreSQL-backed identity.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements identity.Store at compile time.
var _ identity.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// FindAccountByID loads an account by ID. The query projects only the
// fields the pipeline may see; password hash and lockout columns are never
// selected.
func (s *Store) FindAccountByID(ctx context.Context, id string) (*identity.Account, error) {
	var a identity.Account

	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, active, created_at
		FROM accounts
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.Name, &a.Active, &a.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}

	return &a, nil
}

// FindActiveKeyByHash resolves an active key record by its stored hash,
// joined with the owning account's activation flag and profile fields.
func (s *Store) FindActiveKeyByHash(ctx context.Context, hash string) (*identity.APIKey, *identity.Account, error) {
	var k identity.APIKey
	var a identity.Account

	err := s.pool.QueryRow(ctx, `
		SELECT k.id, k.account_id, k.name, k.key_hash, k.active,
		       k.permissions, k.last_used_at, k.created_at,
		       a.id, a.email, a.name, a.active, a.created_at
		FROM api_keys k
		JOIN accounts a ON a.id = k.account_id
		WHERE k.key_hash = $1 AND k.active
	`, hash).Scan(
		&k.ID, &k.AccountID, &k.Name, &k.KeyHash, &k.Active,
		&k.Permissions, &k.LastUsedAt, &k.CreatedAt,
		&a.ID, &a.Email, &a.Name, &a.Active, &a.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying API key: %w", err)
	}

	return &k, &a, nil
}

// TouchKey sets the key record's last-used timestamp to the database clock.
// Overlapping updates are last-write-wins.
func (s *Store) TouchKey(ctx context.Context, keyID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE api_keys SET last_used_at = now() WHERE id = $1
	`, keyID)
	if err != nil {
		return fmt.Errorf("updating last-used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrNotFound
	}
	return nil
}
