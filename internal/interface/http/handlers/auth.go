package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

// TokenResolver resolves an opaque session token to the owning user.
// Implemented by the redis session store.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (shared.UserID, error)
}

// contextKey is a private type for context keys in this package.
type contextKey string

// contextKeyUserID holds the authenticated user's ID in the request context.
const contextKeyUserID contextKey = "user_id"

// UserIDFromContext returns the authenticated user ID set by SessionAuth.
// The boolean is false on unauthenticated requests.
func UserIDFromContext(ctx context.Context) (shared.UserID, bool) {
	id, ok := ctx.Value(contextKeyUserID).(shared.UserID)
	return id, ok
}

// WithUserID returns a context carrying the user ID. Exposed for tests.
func WithUserID(ctx context.Context, id shared.UserID) context.Context {
	return context.WithValue(ctx, contextKeyUserID, id)
}

// SessionAuth returns middleware that authenticates requests with a
// Bearer session token. Requests without a valid token get 401.
func SessionAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				writeAuthError(w, "missing or malformed Authorization header")
				return
			}

			userID, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				writeAuthError(w, "invalid or expired session")
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken pulls the token out of "Authorization: Bearer <token>".
// Returns "" when the header is missing or malformed.
func BearerToken(r *http.Request) string {
	return extractBearerToken(r)
}

// extractBearerToken pulls the token out of "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// writeAuthError writes a 401 response in the standard error envelope.
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
