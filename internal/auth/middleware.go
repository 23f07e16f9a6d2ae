package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
// Using a package-private type (not a bare string) means no other package
// can read or shadow the userID value we stash in the request context.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth is middleware that enforces authentication on protected routes.
//
// It reads the bearer token from the Authorization header, resolves it
// against the token store, and puts the userID in the request context. A
// missing or unknown token ends the request with 401 — the same response
// either way, so the header value can't be probed.
//
// Accepted header forms (the scheme is matched case-insensitively):
//
//	Authorization: Token <key>
//	Authorization: Bearer <key>
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractToken(r)

			userID, err := tokens.Resolve(r.Context(), key)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) when the request never passed RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractToken pulls the token key out of the Authorization header.
// Returns "" when the header is absent or not in a recognized form.
func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}

	scheme, key, found := strings.Cut(header, " ")
	if !found {
		return ""
	}

	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(key)
	}
	return ""
}
