package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MockPriceProvider is a mock implementation of oracle.Provider for testing.
// It returns predefined USD prices instead of making actual API calls.
type MockPriceProvider struct {
	mu sync.Mutex
	// Prices maps symbol to the USD price to return
	Prices map[string]decimal.Decimal
	// MockError is returned for every symbol when set
	MockError error
	// Delay blocks each fetch, honoring context cancellation
	Delay time.Duration
	// queryCount tracks how many times FetchSpotPrice was called per symbol
	queryCount map[string]int
}

// NewMockPriceProvider creates a mock provider with no prices configured.
// Symbols without a configured price return an error.
func NewMockPriceProvider() *MockPriceProvider {
	return &MockPriceProvider{
		Prices:     make(map[string]decimal.Decimal),
		queryCount: make(map[string]int),
	}
}

// Name identifies the mock in logs.
func (m *MockPriceProvider) Name() string { return "mock" }

// FetchSpotPrice returns the configured price, error or timeout.
func (m *MockPriceProvider) FetchSpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	m.mu.Lock()
	m.queryCount[symbol]++
	delay, mockErr := m.Delay, m.MockError
	price, ok := m.Prices[symbol]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		}
	}

	if mockErr != nil {
		return decimal.Zero, mockErr
	}
	if !ok {
		return decimal.Zero, fmt.Errorf("no mock price for %s", symbol)
	}
	return price, nil
}

// QueryCount returns how many times symbol was fetched.
func (m *MockPriceProvider) QueryCount(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCount[symbol]
}

// WithPrice configures the USD price returned for symbol.
func (m *MockPriceProvider) WithPrice(symbol string, price string) *MockPriceProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prices[symbol] = decimal.RequireFromString(price)
	return m
}

// WithError configures the mock to return the specified error.
func (m *MockPriceProvider) WithError(err error) *MockPriceProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MockError = err
	return m
}

// WithDelay configures the mock to block each fetch for d.
func (m *MockPriceProvider) WithDelay(d time.Duration) *MockPriceProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delay = d
	return m
}
