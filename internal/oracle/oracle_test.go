package oracle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/kuberx/portfolio-ledger/internal/oracle"
	"github.com/kuberx/portfolio-ledger/internal/testutil"
	"github.com/shopspring/decimal"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// TestOracle_GetPrice tests live quoting, caching and fallback.
//
// WHY: Trades and revaluation must always get a usable number. Provider
// failures degrade to a deterministic fallback instead of failing requests,
// and repeated lookups inside the TTL must not hit the provider again.
func TestOracle_GetPrice(t *testing.T) {
	t.Run("converts live USD price to INR", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider().WithPrice("BTC", "30000.125")
		o := oracle.New(provider, oracle.Options{})

		q := o.GetPrice(context.Background(), "btc")

		if q.Source != model.SourceLive {
			t.Errorf("Expected live source, got %s", q.Source)
		}
		if !q.Price.Equal(decimal.RequireFromString("2490010.38")) {
			t.Errorf("Expected price 2490010.38, got %s", q.Price)
		}
		if q.Symbol != "BTC" {
			t.Errorf("Expected normalized symbol BTC, got %s", q.Symbol)
		}
	})

	t.Run("serves cached quote within TTL", func(t *testing.T) {
		clock := newClock()
		provider := testutil.NewMockPriceProvider().WithPrice("ETH", "2000")
		o := oracle.New(provider, oracle.Options{TTL: 5 * time.Minute, Now: clock.Now})

		first := o.GetPrice(context.Background(), "ETH")
		provider.WithPrice("ETH", "2500")
		clock.Advance(4 * time.Minute)
		second := o.GetPrice(context.Background(), "ETH")

		if provider.QueryCount("ETH") != 1 {
			t.Errorf("Expected 1 provider call, got %d", provider.QueryCount("ETH"))
		}
		if !first.Price.Equal(second.Price) {
			t.Errorf("Expected cached price %s, got %s", first.Price, second.Price)
		}
	})

	t.Run("refetches after TTL expires", func(t *testing.T) {
		clock := newClock()
		provider := testutil.NewMockPriceProvider().WithPrice("ETH", "2000")
		o := oracle.New(provider, oracle.Options{TTL: 5 * time.Minute, Now: clock.Now})

		o.GetPrice(context.Background(), "ETH")
		provider.WithPrice("ETH", "2500")
		clock.Advance(5 * time.Minute)
		q := o.GetPrice(context.Background(), "ETH")

		if provider.QueryCount("ETH") != 2 {
			t.Errorf("Expected 2 provider calls, got %d", provider.QueryCount("ETH"))
		}
		if !q.Price.Equal(decimal.NewFromInt(207500)) {
			t.Errorf("Expected refreshed price 207500, got %s", q.Price)
		}
	})

	t.Run("falls back on provider error", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider().WithError(errors.New("upstream 503"))
		o := oracle.New(provider, oracle.Options{})

		q := o.GetPrice(context.Background(), "SOL")

		if q.Source != model.SourceFallback {
			t.Errorf("Expected fallback source, got %s", q.Source)
		}
		if !q.Price.Equal(decimal.NewFromInt(8750)) {
			t.Errorf("Expected fallback price 8750, got %s", q.Price)
		}
	})

	t.Run("falls back on timeout for unsupported symbol", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider().WithPrice("XYZ", "1").WithDelay(time.Second)
		o := oracle.New(provider, oracle.Options{FetchTimeout: 20 * time.Millisecond})

		start := time.Now()
		q := o.GetPrice(context.Background(), "XYZ")

		if time.Since(start) > 500*time.Millisecond {
			t.Errorf("Expected fetch to be cut off by timeout, took %s", time.Since(start))
		}
		if q.Source != model.SourceFallback {
			t.Errorf("Expected fallback source, got %s", q.Source)
		}
		if !q.Price.Equal(oracle.DefaultFallbackPrice) {
			t.Errorf("Expected default fallback price, got %s", q.Price)
		}
	})

	t.Run("nil provider serves fallback prices", func(t *testing.T) {
		o := oracle.New(nil, oracle.Options{})

		q := o.GetPrice(context.Background(), "LINK")

		if !q.Price.Equal(decimal.NewFromInt(1200)) {
			t.Errorf("Expected fallback price 1200, got %s", q.Price)
		}
	})

	t.Run("caches fallback quotes", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider().WithError(errors.New("down"))
		o := oracle.New(provider, oracle.Options{})

		o.GetPrice(context.Background(), "ADA")
		o.GetPrice(context.Background(), "ADA")

		if provider.QueryCount("ADA") != 1 {
			t.Errorf("Expected 1 provider call, got %d", provider.QueryCount("ADA"))
		}
	})

	t.Run("concurrent misses share one fetch", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider().WithPrice("DOT", "5").WithDelay(50 * time.Millisecond)
		o := oracle.New(provider, oracle.Options{})

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				o.GetPrice(context.Background(), "DOT")
			}()
		}
		wg.Wait()

		if provider.QueryCount("DOT") != 1 {
			t.Errorf("Expected 1 provider call, got %d", provider.QueryCount("DOT"))
		}
	})
}

// TestOracle_GetPrices tests batch quoting.
//
// WHY: A failure for one symbol must not affect quotes for the others.
func TestOracle_GetPrices(t *testing.T) {
	provider := testutil.NewMockPriceProvider().WithPrice("BTC", "100").WithPrice("ETH", "10")
	o := oracle.New(provider, oracle.Options{})

	quotes := o.GetPrices(context.Background(), []string{"BTC", "eth", "NOPE"})

	if len(quotes) != 3 {
		t.Fatalf("Expected 3 quotes, got %d", len(quotes))
	}
	if quotes["BTC"].Source != model.SourceLive || !quotes["BTC"].Price.Equal(decimal.NewFromInt(8300)) {
		t.Errorf("Unexpected BTC quote: %+v", quotes["BTC"])
	}
	if quotes["ETH"].Source != model.SourceLive || !quotes["ETH"].Price.Equal(decimal.NewFromInt(830)) {
		t.Errorf("Unexpected ETH quote: %+v", quotes["ETH"])
	}
	if quotes["NOPE"].Source != model.SourceFallback {
		t.Errorf("Expected NOPE to fall back, got %+v", quotes["NOPE"])
	}

	t.Run("refresh bypasses cache", func(t *testing.T) {
		o.Refresh(context.Background(), []string{"BTC"})

		if provider.QueryCount("BTC") != 2 {
			t.Errorf("Expected 2 provider calls, got %d", provider.QueryCount("BTC"))
		}
	})

	t.Run("invalidate empties cache", func(t *testing.T) {
		o.Invalidate()
		o.GetPrice(context.Background(), "ETH")

		if provider.QueryCount("ETH") != 2 {
			t.Errorf("Expected 2 provider calls, got %d", provider.QueryCount("ETH"))
		}
	})
}
