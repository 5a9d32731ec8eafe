package auth

import (
	"net/http"
	"strings"
)

// Header names the extractor reads. Lookup is case-insensitive via
// http.Header canonicalization.
const (
	headerAuthorization = "Authorization"
	headerAPIKey        = "X-API-Key"

	bearerPrefix = "Bearer "
)

// BearerToken extracts the bearer credential from the Authorization header.
// Returns "" when the header is absent, uses a different scheme, or carries
// no value after the prefix. Absence is a normal outcome; the pipeline
// classifies it downstream.
func BearerToken(h http.Header) string {
	header := h.Get(headerAuthorization)
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}

// RawAPIKey extracts the API key credential. A dedicated X-API-Key header
// always wins; the bearer-prefixed Authorization header is consulted only
// when X-API-Key is missing entirely, so a request carrying both headers is
// keyed by X-API-Key.
func RawAPIKey(h http.Header) string {
	if key := h.Get(headerAPIKey); key != "" {
		return key
	}
	return BearerToken(h)
}
