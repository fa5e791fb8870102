package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kuberx/portfolio-ledger/internal/api/response"
)

type contextKey struct{}

var userIDKey = contextKey{}

// TokenVerifier resolves a bearer token to the user ID it was issued for.
// *token.Authority implements it.
type TokenVerifier interface {
	Verify(tok string) (string, error)
}

// RequireUser authenticates the request with an "Authorization: Bearer <token>"
// header and stores the token's user ID in the request context.
// Returns 401 Unauthorized if the header is missing or the token is invalid.
//
// Example usage in router:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.RequireUser(authority))
//	    r.Get("/portfolio", handler.Portfolio)
//	})
func RequireUser(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tok, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(tok) == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}

			userID, err := verifier.Verify(strings.TrimSpace(tok))
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID set by RequireUser.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
