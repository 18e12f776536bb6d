// Package common defines shared constants and sentinel errors used across
// the client and server layers of minifeed. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration / referential errors.
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUnknownUser    = errors.New("unknown user")

	// Validation errors.
	ErrBodyTooLong = errors.New("tweet body exceeds 300 characters")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
