package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/api"
	"github.com/kuberx/portfolio-ledger/internal/config"
	"github.com/kuberx/portfolio-ledger/internal/database"
	"github.com/kuberx/portfolio-ledger/internal/lock"
	"github.com/kuberx/portfolio-ledger/internal/oracle"
	"github.com/kuberx/portfolio-ledger/internal/repository"
	"github.com/kuberx/portfolio-ledger/internal/scheduler"
	"github.com/kuberx/portfolio-ledger/internal/service"
	"github.com/kuberx/portfolio-ledger/internal/token"
	"github.com/kuberx/portfolio-ledger/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	authority, err := token.NewAuthority(cfg.Auth.Keys, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to configure token authority: %v", err)
	}

	locker, closeLocker, err := lock.NewFromConfig(context.Background(), cfg.Lock)
	if err != nil {
		log.Fatalf("Failed to configure portfolio lock: %v", err)
	}
	defer closeLocker() //nolint:errcheck

	prices := oracle.NewFromConfig(cfg.Oracle)

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	realizedGainLossRepo := repository.NewRealizedGainLossRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	ledgerService := service.NewLedgerService(
		db,
		userRepo,
		portfolioRepo,
		tradeRepo,
		realizedGainLossRepo,
		prices,
		locker,
	)
	marketService := service.NewMarketService(prices, portfolioRepo)

	var warmer *scheduler.Scheduler
	if cfg.Oracle.WarmSchedule != "" {
		warmer, err = scheduler.New(marketService, cfg.Oracle.WarmSchedule)
		if err != nil {
			log.Fatalf("Failed to configure cache warming: %v", err)
		}
		warmer.Start()
	}

	// Create router
	router := api.NewRouter(systemService, ledgerService, marketService, authority, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting portfolio ledger %s on %s", version.Version, cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if warmer != nil {
		warmer.Stop(ctx)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
