package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kuberx/portfolio-ledger/internal/api/request"
	"github.com/kuberx/portfolio-ledger/internal/api/response"
	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/kuberx/portfolio-ledger/internal/service"
)

// UserHandler handles HTTP requests for the caller's account: dashboard,
// trade history, realized gains and account deletion.
type UserHandler struct {
	ledger *service.LedgerService
}

// NewUserHandler creates a new UserHandler with the provided service dependency.
func NewUserHandler(ledger *service.LedgerService) *UserHandler {
	return &UserHandler{
		ledger: ledger,
	}
}

// DashboardResponse wraps the dashboard summary.
type DashboardResponse struct {
	Dashboard model.Dashboard `json:"dashboard"`
}

// TransactionResponse wraps a single trade.
type TransactionResponse struct {
	Transaction model.Trade `json:"transaction"`
}

// RealizedGainsResponse lists realized gain/loss records, oldest first.
type RealizedGainsResponse struct {
	RealizedGains []model.RealizedGainLoss `json:"realizedGains"`
}

// Dashboard handles GET requests for the caller's dashboard summary.
//
// Endpoint: GET /api/user/dashboard
// Response: 200 OK with DashboardResponse
// Error: 403 Forbidden if the account was deleted
// Error: 500 Internal Server Error if retrieval fails
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.ledger.Dashboard(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, apperrors.ErrFailedToRetrieveDashboard, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, DashboardResponse{Dashboard: dashboard})
}

// Transactions handles GET requests for the caller's trade history, newest first.
//
// Endpoint: GET /api/user/transactions
// Query Parameters:
//   - symbol: optional symbol filter
//   - type: optional buy or sell
//   - status: optional pending, completed, failed or cancelled
//   - from, to: optional YYYY-MM-DD bounds (inclusive)
//   - page, limit: pagination (defaults 1 and 20, limit at most 100)
//
// Response: 200 OK with model.TradePage
// Error: 400 Bad Request if a query parameter is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *UserHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter, err := request.ParseTradeFilters(
		q.Get("symbol"),
		q.Get("type"),
		q.Get("status"),
		q.Get("from"),
		q.Get("to"),
		q.Get("page"),
		q.Get("limit"),
	)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	page, err := h.ledger.ListTrades(r.Context(), userID, filter)
	if err != nil {
		respondLedgerError(w, apperrors.ErrFailedToRetrieveTransactions, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, page)
}

// Transaction handles GET requests for one of the caller's trades.
// Trades belonging to other users are reported as not found.
//
// Endpoint: GET /api/user/transactions/{transactionId}
// Response: 200 OK with TransactionResponse
// Error: 400 Bad Request if the ID is not a valid UUID (router middleware)
// Error: 404 Not Found if the trade does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *UserHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	trade, err := h.ledger.GetTrade(r.Context(), userID, chi.URLParam(r, "transactionId"))
	if err != nil {
		respondLedgerError(w, apperrors.ErrFailedToRetrieveTransaction, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, TransactionResponse{Transaction: trade})
}

// RealizedGains handles GET requests for the caller's realized gain/loss records.
//
// Endpoint: GET /api/user/realized-gains
// Response: 200 OK with RealizedGainsResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *UserHandler) RealizedGains(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	records, err := h.ledger.RealizedGains(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, apperrors.ErrFailedToRetrieveTransactions, err)
		return
	}
	if records == nil {
		records = []model.RealizedGainLoss{}
	}

	response.RespondJSON(w, http.StatusOK, RealizedGainsResponse{RealizedGains: records})
}

// DeleteAccount handles DELETE requests that remove the caller's portfolio,
// trade history and realized records, and deactivate the account.
//
// Endpoint: DELETE /api/user/account
// Response: 200 OK with response.MessageResponse
// Error: 500 Internal Server Error if deletion fails
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.ledger.DeleteAccount(r.Context(), userID); err != nil {
		respondLedgerError(w, apperrors.ErrFailedToDeleteAccount, err)
		return
	}

	response.RespondMessage(w, "Account deleted successfully")
}
