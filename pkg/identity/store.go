package identity

import "context"

// Store is the persistent identity lookup consumed by the authentication
// pipeline. Implementations must return ErrNotFound for missing records and
// reserve other errors for infrastructure failures; the pipeline maps the
// two cases to different rejection classes.
type Store interface {
	// FindAccountByID loads an account by its identifier using a projection
	// that excludes PasswordHash, FailedLogins, and LockedUntil.
	FindAccountByID(ctx context.Context, id string) (*Account, error)

	// FindActiveKeyByHash resolves an active API key record by its stored
	// hash, joined with its owning account. Inactive key records are
	// treated as absent. The returned account carries the activation flag
	// and minimal profile fields only.
	FindActiveKeyByHash(ctx context.Context, hash string) (*APIKey, *Account, error)

	// TouchKey updates the key record's last-used timestamp to now.
	// Concurrent touches are last-write-wins; callers treat failure as
	// observable but non-fatal.
	TouchKey(ctx context.Context, keyID string) error
}
