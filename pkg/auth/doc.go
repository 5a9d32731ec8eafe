// Package auth provides the pluggable request-authentication and
// authorization pipeline for pforte.
//
// Two credential schemes share one orchestration skeleton: a verifier
// extracts a credential from the request, validates it, resolves the owning
// account against the identity store, and the middleware attaches the result
// to the request context. Every failure is classified into a stable
// rejection code before leaving the pipeline; nothing is retried.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from handler
// logic. The permission gate is a second, post-authentication middleware
// that checks a named capability against the attached API key record.
package auth
