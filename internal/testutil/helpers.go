package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kuberx/portfolio-ledger/internal/lock"
	"github.com/kuberx/portfolio-ledger/internal/oracle"
	"github.com/kuberx/portfolio-ledger/internal/repository"
	"github.com/kuberx/portfolio-ledger/internal/service"
	"github.com/kuberx/portfolio-ledger/internal/token"
	"github.com/shopspring/decimal"
)

// NewTestOracle creates an Oracle in front of the given mock provider.
// A nil provider serves fallback prices only.
func NewTestOracle(t *testing.T, provider *MockPriceProvider) *oracle.Oracle {
	t.Helper()
	if provider == nil {
		return oracle.New(nil, oracle.Options{})
	}
	return oracle.New(provider, oracle.Options{})
}

// NewTestLedgerService creates a LedgerService backed by db, a local locker and
// an oracle that serves fallback prices.
func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()
	return NewTestLedgerServiceWithOracle(t, db, NewTestOracle(t, nil))
}

// NewTestLedgerServiceWithOracle creates a LedgerService with a custom price source.
func NewTestLedgerServiceWithOracle(t *testing.T, db *sql.DB, prices service.PriceSource) *service.LedgerService {
	t.Helper()
	return service.NewLedgerService(
		db,
		repository.NewUserRepository(db),
		repository.NewPortfolioRepository(db),
		repository.NewTradeRepository(db),
		repository.NewRealizedGainLossRepository(db),
		prices,
		lock.NewLocalLocker(),
	)
}

// NewTestMarketService creates a MarketService with a custom price source.
func NewTestMarketService(t *testing.T, db *sql.DB, prices service.PriceSource) *service.MarketService {
	t.Helper()
	return service.NewMarketService(prices, repository.NewPortfolioRepository(db))
}

// NewTestSystemService creates a SystemService for testing.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db)
}

// NewTestAuthority creates a token Authority with a freshly generated key.
func NewTestAuthority(t *testing.T) *token.Authority {
	t.Helper()

	key, err := token.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate token key: %v", err)
	}
	authority, err := token.NewAuthority([]string{key}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token authority: %v", err)
	}
	return authority
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// Dec parses a decimal literal, failing the test on malformed input.
//
// Example usage:
//
//	amount := testutil.Dec(t, "0.5")
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("Invalid decimal literal %q: %v", s, err)
	}
	return d
}
