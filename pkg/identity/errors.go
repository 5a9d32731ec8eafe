package identity

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when an account or key record does not exist.
	ErrNotFound = errors.New("identity not found")
)
