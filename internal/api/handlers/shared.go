package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kuberx/portfolio-ledger/internal/api/middleware"
	"github.com/kuberx/portfolio-ledger/internal/api/response"
	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/validation"
)

// parseJSON decodes the request body into a value of type T.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, errors.New("request body is required")
	}

	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

// requireUserID returns the authenticated user ID placed in the context by
// middleware.RequireUser, responding 401 when it is missing.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "unauthorized", apperrors.ErrInvalidToken.Error())
		return "", false
	}
	return userID, true
}

// respondLedgerError maps a ledger error to its HTTP status. failure is the
// user-facing message used for unexpected errors.
func respondLedgerError(w http.ResponseWriter, failure error, err error) {
	var verr *validation.Error

	switch {
	case errors.Is(err, apperrors.ErrPersistence):
		response.RespondError(w, http.StatusInternalServerError, failure.Error(), err.Error())
	case errors.As(err, &verr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, apperrors.ErrInvalidTrade):
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, apperrors.ErrInsufficientHolding):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInsufficientHolding.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInsufficientBalance.Error(), err.Error())
	case errors.Is(err, apperrors.ErrAccountInactive):
		response.RespondError(w, http.StatusForbidden, apperrors.ErrAccountInactive.Error(), err.Error())
	case errors.Is(err, apperrors.ErrTradeNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrPortfolioNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, failure.Error(), err.Error())
	}
}
