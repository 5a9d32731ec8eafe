package auth

import (
	"encoding/json"
	"net/http"
)

// Rejection codes. Each maps to exactly one HTTP status and is stable for
// machine consumption.
const (
	CodeNoToken            = "NO_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"

	CodeNoAPIKey            = "NO_API_KEY"
	CodeInvalidAPIKeyFormat = "INVALID_API_KEY_FORMAT"
	CodeInvalidAPIKey       = "INVALID_API_KEY"
	CodeUserDeactivated     = "USER_DEACTIVATED"

	CodeAuthRequired            = "AUTH_REQUIRED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeRateLimited             = "RATE_LIMITED"
	CodeServiceError            = "AUTH_SERVICE_ERROR"
)

// Rejection is a structured, classified authentication failure. It is the
// only failure shape the pipeline emits to callers; internal error detail
// never crosses this boundary.
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// rejectionBody wraps a Rejection for JSON serialization as the top-level
// error response.
type rejectionBody struct {
	Error *Rejection `json:"error"`
}

// Reject creates a Rejection with the status mapped from the code:
// 403 for insufficient permissions, 429 for rate limiting, 500 for service
// faults, 401 for every credential or identity failure.
func Reject(code, message string) *Rejection {
	status := http.StatusUnauthorized
	switch code {
	case CodeInsufficientPermissions:
		status = http.StatusForbidden
	case CodeRateLimited:
		status = http.StatusTooManyRequests
	case CodeServiceError:
		status = http.StatusInternalServerError
	}
	return &Rejection{Code: code, Message: message, Status: status}
}

// ServiceError is the generic rejection for identity store or hashing
// infrastructure failures. The underlying error is logged by the caller,
// never exposed.
func ServiceError() *Rejection {
	return Reject(CodeServiceError, "authentication service unavailable")
}

// WriteRejection finalizes the response with the rejection's status and
// JSON payload.
func WriteRejection(w http.ResponseWriter, rej *Rejection) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rej.Status)
	json.NewEncoder(w).Encode(rejectionBody{Error: rej})
}
