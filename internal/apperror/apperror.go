// Package apperror defines the application's error taxonomy.
//
// Services return these errors; HTTP handlers translate them to status codes.
// The taxonomy is deliberately small:
//
//	ErrValidation       → 400  malformed or missing input (incl. duplicate email)
//	ErrUnauthorized     → 401  missing/unknown token, bad credential pair
//	ErrNotFound         → 404  absent — or owned by someone else (same thing, on purpose)
//	ErrMethodNotAllowed → 405  endpoint exists, verb doesn't
//
// Note there is no Forbidden: a recipe owned by another user is reported as
// not found, so ownership can't be probed by existence checks.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// AppError carries a sentinel (for errors.Is dispatch) plus a human-readable
// message and, for validation errors, the offending field.
type AppError struct {
	Err     error  // sentinel error, checked with errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized returns the constant-shape authentication failure.
// Callers must NOT vary the message between "no such user" and "wrong
// password" — the single shape is what prevents account enumeration.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// MethodNotAllowed is returned when a verb is invoked against an endpoint
// that doesn't support it (e.g. POST to the profile endpoint).
func MethodNotAllowed(method string) *AppError {
	return &AppError{
		Err:     ErrMethodNotAllowed,
		Message: fmt.Sprintf("method %s not allowed", method),
	}
}
