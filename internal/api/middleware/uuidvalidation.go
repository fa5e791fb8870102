// Package middleware provides HTTP middleware for authentication, request
// validation and access logging.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kuberx/portfolio-ledger/internal/api/response"
	"github.com/kuberx/portfolio-ledger/internal/validation"
)

// ValidateUUIDParam validates that the named URL parameter is present and is a valid UUID.
// Returns 400 Bad Request if it is missing or malformed.
//
// Example usage in router:
//
//	r.With(middleware.ValidateUUIDParam("transactionId")).
//	    Get("/transactions/{transactionId}", handler.Transaction)
func ValidateUUIDParam(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, param)

			if id == "" {
				response.RespondError(w, http.StatusBadRequest, "valid UUID is required", "")
				return
			}

			if err := validation.ValidateUUID(id); err != nil {
				response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
