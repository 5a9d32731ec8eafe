// Package identity defines the account and API key domain types and the
// Store interface backing the authentication pipeline.
//
// Store implementations (memory, postgres) live in subpackages. The pipeline
// treats the store as read-mostly: it loads accounts and key records per
// request and performs a single best-effort last-used write on successful
// API key verification. This package contains only shared types, the
// interface, and sentinel errors.
package identity
