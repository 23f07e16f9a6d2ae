// Package handler contains the HTTP boundary: request decoding, response
// mapping, and translation of domain errors into status codes. Nothing in
// here knows SQL; nothing below here knows HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-api/internal/apperror"
)

// ErrorResponse is the single error shape every endpoint returns.
// One shape for 400, 401, 404 and 405 means clients parse errors one way.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response. Headers and status must be written
// before the body — Encode's first Write flushes them.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status.
//
// The service layer returns apperror sentinels; this is the only place they
// meet status codes. Unrecognized errors become an opaque 500 — internal
// messages (SQL text, paths) must never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrMethodNotAllowed):
			status = http.StatusMethodNotAllowed
			errorType = "method_not_allowed"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// MethodNotAllowedHandler replaces the router's plain-text 405 so an
// unsupported verb (e.g. POST to the profile endpoint) gets the same JSON
// error shape as everything else.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, apperror.MethodNotAllowed(r.Method))
	}
}
