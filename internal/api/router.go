package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kuberx/portfolio-ledger/internal/api/handlers"
	custommiddleware "github.com/kuberx/portfolio-ledger/internal/api/middleware"
	"github.com/kuberx/portfolio-ledger/internal/config"
	"github.com/kuberx/portfolio-ledger/internal/metrics"
	"github.com/kuberx/portfolio-ledger/internal/service"
)

// NewRouter creates and configures the HTTP router.
// Portfolio and user routes require a bearer token verified by verifier;
// system and market routes are public.
func NewRouter(
	systemService *service.SystemService,
	ledgerService *service.LedgerService,
	marketService *service.MarketService,
	verifier custommiddleware.TokenVerifier,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/crypto", func(r chi.Router) {
			cryptoHandler := handlers.NewCryptoHandler(marketService)
			r.Get("/popular", cryptoHandler.Popular)
			r.Get("/search/{query}", cryptoHandler.Search)
			r.Get("/{symbol}", cryptoHandler.Detail)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Use(custommiddleware.RequireUser(verifier))

			portfolioHandler := handlers.NewPortfolioHandler(ledgerService)
			r.Get("/", portfolioHandler.Portfolio)
			r.Post("/buy", portfolioHandler.Buy)
			r.Post("/sell", portfolioHandler.Sell)
			r.Put("/update-prices", portfolioHandler.UpdatePrices)
			r.Post("/refresh-prices", portfolioHandler.RefreshPrices)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(custommiddleware.RequireUser(verifier))

			userHandler := handlers.NewUserHandler(ledgerService)
			r.Get("/dashboard", userHandler.Dashboard)
			r.Get("/transactions", userHandler.Transactions)
			r.With(custommiddleware.ValidateUUIDParam("transactionId")).
				Get("/transactions/{transactionId}", userHandler.Transaction)
			r.Get("/realized-gains", userHandler.RealizedGains)
			r.Delete("/account", userHandler.DeleteAccount)
		})
	})

	return r
}
