package oracle

import (
	"log"

	"github.com/kuberx/portfolio-ledger/internal/config"
	"golang.org/x/time/rate"
)

// NewProvider returns the provider named by cfg.Provider, or nil for "none".
func NewProvider(cfg config.OracleConfig) Provider {
	switch cfg.Provider {
	case "finage":
		if cfg.APIKey == "" {
			log.Printf("oracle: FINAGE_API_KEY is not set, serving fallback prices only")
			return nil
		}
		return NewFinageClient(cfg.BaseURL, cfg.APIKey)
	case "binance":
		return NewBinanceClient(cfg.BaseURL)
	default:
		return nil
	}
}

// NewFromConfig builds an Oracle from configuration, rate limiting upstream
// requests to cfg.RateLimit per second.
func NewFromConfig(cfg config.OracleConfig) *Oracle {
	provider := NewProvider(cfg)
	if provider != nil {
		log.Printf("oracle: using %s price provider", provider.Name())
	}

	opts := Options{
		TTL:          cfg.CacheTTL,
		FetchTimeout: cfg.FetchTimeout,
		USDRate:      cfg.USDRate,
	}
	if cfg.RateLimit > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}

	return New(provider, opts)
}
