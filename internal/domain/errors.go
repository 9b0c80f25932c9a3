package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Credential-store sentinels. Callers pattern-match these to decide fallback
// behavior (create if missing, update password if existing).
var (
	ErrUserNotFound = errors.New("credential: user not found")
	ErrEmailExists  = errors.New("credential: email already exists")
)
