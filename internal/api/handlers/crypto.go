package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kuberx/portfolio-ledger/internal/api/response"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/kuberx/portfolio-ledger/internal/service"
)

// CryptoHandler serves market listings backed by the price oracle.
type CryptoHandler struct {
	marketService *service.MarketService
}

// NewCryptoHandler creates a new CryptoHandler.
func NewCryptoHandler(marketService *service.MarketService) *CryptoHandler {
	return &CryptoHandler{
		marketService: marketService,
	}
}

// PopularResponse lists the popular assets.
type PopularResponse struct {
	Cryptocurrencies []model.Asset `json:"cryptocurrencies"`
}

// SearchResponse lists catalog matches.
type SearchResponse struct {
	Results []model.SearchResult `json:"results"`
}

// Popular handles GET requests for the popular asset list with current prices.
//
// Endpoint: GET /api/crypto/popular
// Response: 200 OK with PopularResponse
func (h *CryptoHandler) Popular(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, PopularResponse{
		Cryptocurrencies: h.marketService.Popular(r.Context()),
	})
}

// Detail handles GET requests for one asset. Unknown symbols get generic data
// and the default fallback price.
//
// Endpoint: GET /api/crypto/{symbol}
// Response: 200 OK with model.AssetDetail
func (h *CryptoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.marketService.Detail(r.Context(), chi.URLParam(r, "symbol")))
}

// Search handles GET requests that match the catalog by symbol or name.
//
// Endpoint: GET /api/crypto/search/{query}
// Response: 200 OK with SearchResponse
func (h *CryptoHandler) Search(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, SearchResponse{
		Results: h.marketService.Search(chi.URLParam(r, "query")),
	})
}
