package identity

import "time"

// PermissionAdmin is the universal capability. A key holding it is
// authorized for every permission check.
const PermissionAdmin = "admin"

// Account represents a registered identity.
type Account struct {
	// ID is the unique account identifier (required, non-empty).
	ID string

	// Email is the login identifier.
	Email string

	// Name is the display name.
	Name string

	// PasswordHash is the login credential hash. It is never populated by
	// the authentication pipeline's account projection.
	PasswordHash string

	// Active gates authentication. An inactive account is never attached
	// to a request, regardless of credential validity.
	Active bool

	// FailedLogins and LockedUntil belong to the login/lockout flow and
	// are excluded from the pipeline's projection alongside PasswordHash.
	FailedLogins int
	LockedUntil  *time.Time

	CreatedAt time.Time
}

// APIKey represents a long-lived credential bound to one account.
// Only the SHA-256 digest of the raw key material is stored.
type APIKey struct {
	// ID is the unique key record identifier.
	ID string

	// AccountID references the owning account.
	AccountID string

	// Name is a human-chosen label for the key.
	Name string

	// KeyHash is the hex-encoded SHA-256 digest of the raw key. It doubles
	// as the lookup index; the raw key value is never persisted.
	KeyHash string

	// Active gates the key independently of its owning account.
	Active bool

	// Permissions lists the capability names granted to this key.
	Permissions []string

	// LastUsedAt is updated best-effort after each successful verification.
	LastUsedAt *time.Time

	CreatedAt time.Time
}

// HasPermission reports whether the key grants the named capability.
// The admin capability implies all others.
func (k *APIKey) HasPermission(name string) bool {
	if k == nil {
		return false
	}
	for _, p := range k.Permissions {
		if p == name || p == PermissionAdmin {
			return true
		}
	}
	return false
}
