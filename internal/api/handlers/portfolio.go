package handlers

import (
	"net/http"

	"github.com/kuberx/portfolio-ledger/internal/api/request"
	"github.com/kuberx/portfolio-ledger/internal/api/response"
	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/kuberx/portfolio-ledger/internal/service"
	"github.com/kuberx/portfolio-ledger/internal/validation"
)

// PortfolioHandler handles HTTP requests for the caller's portfolio and trades.
// The user is always the one authenticated by middleware.RequireUser.
type PortfolioHandler struct {
	ledger *service.LedgerService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(ledger *service.LedgerService) *PortfolioHandler {
	return &PortfolioHandler{
		ledger: ledger,
	}
}

// PortfolioResponse wraps a portfolio, with an optional message for mutations.
type PortfolioResponse struct {
	Message   string                 `json:"message,omitempty"`
	Portfolio *model.Portfolio       `json:"portfolio"`
	Updated   []string               `json:"updated,omitempty"`
	Quotes    map[string]model.Quote `json:"quotes,omitempty"`
}

// TradeResponse is returned by the buy and sell endpoints.
type TradeResponse struct {
	Message          string                  `json:"message"`
	Transaction      model.Trade             `json:"transaction"`
	Portfolio        *model.Portfolio        `json:"portfolio"`
	RealizedGainLoss *model.RealizedGainLoss `json:"realizedGainLoss,omitempty"`
}

// Portfolio handles GET requests for the caller's portfolio.
// An empty portfolio is created on first access.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with PortfolioResponse
// Error: 403 Forbidden if the account was deleted
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	portfolio, err := h.ledger.GetPortfolio(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, apperrors.ErrFailedToRetrievePortfolio, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, PortfolioResponse{Portfolio: portfolio})
}

// Buy handles POST requests to buy an asset.
//
// Endpoint: POST /api/portfolio/buy
// Request Body: BuyRequest (symbol, name, amount, price, paymentMethod, notes)
// Response: 201 Created with TradeResponse
// Error: 400 Bad Request if the body is invalid or validation fails
// Error: 403 Forbidden if the account was deleted
// Error: 500 Internal Server Error if the trade could not be persisted
func (h *PortfolioHandler) Buy(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.BuyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateBuy(req); err != nil {
		respondLedgerError(w, apperrors.ErrFailedToExecuteTrade, err)
		return
	}

	result, err := h.ledger.Buy(r.Context(), userID, model.TradeOrder{
		Symbol:        req.Symbol,
		Name:          req.Name,
		Amount:        *req.Amount,
		Price:         *req.Price,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		respondLedgerError(w, apperrors.ErrFailedToExecuteTrade, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, TradeResponse{
		Message:     "Purchase successful",
		Transaction: result.Trade,
		Portfolio:   result.Portfolio,
	})
}

// Sell handles POST requests to sell part or all of a holding.
//
// Endpoint: POST /api/portfolio/sell
// Request Body: SellRequest (symbol, amount, price, paymentMethod, notes)
// Response: 200 OK with TradeResponse including the realized gain/loss
// Error: 400 Bad Request if validation fails or the holding is insufficient
// Error: 403 Forbidden if the account was deleted
// Error: 500 Internal Server Error if the trade could not be persisted
func (h *PortfolioHandler) Sell(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.SellRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSell(req); err != nil {
		respondLedgerError(w, apperrors.ErrFailedToExecuteTrade, err)
		return
	}

	result, err := h.ledger.Sell(r.Context(), userID, model.TradeOrder{
		Symbol:        req.Symbol,
		Amount:        *req.Amount,
		Price:         *req.Price,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		respondLedgerError(w, apperrors.ErrFailedToExecuteTrade, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, TradeResponse{
		Message:          "Sale successful",
		Transaction:      result.Trade,
		Portfolio:        result.Portfolio,
		RealizedGainLoss: result.Realized,
	})
}

// UpdatePrices handles PUT requests that set current prices for held symbols.
// Held symbols missing from the map keep their last price.
//
// Endpoint: PUT /api/portfolio/update-prices
// Request Body: UpdatePricesRequest ({"prices": {"BTC": 2650000}})
// Response: 200 OK with PortfolioResponse
// Error: 400 Bad Request if validation fails
// Error: 403 Forbidden if the account was deleted
// Error: 500 Internal Server Error if the update could not be persisted
func (h *PortfolioHandler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.UpdatePricesRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdatePrices(req); err != nil {
		respondLedgerError(w, apperrors.ErrFailedToUpdatePrices, err)
		return
	}

	portfolio, updated, err := h.ledger.UpdatePrices(r.Context(), userID, req.Prices)
	if err != nil {
		respondLedgerError(w, apperrors.ErrFailedToUpdatePrices, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, PortfolioResponse{
		Message:   "Portfolio updated successfully",
		Portfolio: portfolio,
		Updated:   updated,
	})
}

// RefreshPrices handles POST requests that reprice every holding through the oracle.
//
// Endpoint: POST /api/portfolio/refresh-prices
// Response: 200 OK with PortfolioResponse including the quotes used
// Error: 403 Forbidden if the account was deleted
// Error: 500 Internal Server Error if the update could not be persisted
func (h *PortfolioHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	portfolio, quotes, err := h.ledger.RefreshFromOracle(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, apperrors.ErrFailedToUpdatePrices, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, PortfolioResponse{
		Message:   "Portfolio updated successfully",
		Portfolio: portfolio,
		Quotes:    quotes,
	})
}
