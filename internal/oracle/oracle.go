package oracle

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/metrics"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultTTL          = 5 * time.Minute
	DefaultFetchTimeout = 10 * time.Second
	batchConcurrency    = 8
)

// DefaultUSDRate converts provider USD quotes to the ledger currency (INR).
var DefaultUSDRate = decimal.NewFromInt(83)

// Options configures an Oracle.
type Options struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	USDRate      decimal.Decimal
	Limiter      *rate.Limiter    // nil means unlimited
	Now          func() time.Time // nil means time.Now
}

type cacheEntry struct {
	quote     model.Quote
	expiresAt time.Time
}

// Oracle is a process-wide price cache in front of a Provider. It starts
// empty, fills on first miss and expires entries after the TTL. It is safe
// for concurrent use; concurrent misses on one symbol share a single fetch.
type Oracle struct {
	provider Provider
	ttl      time.Duration
	timeout  time.Duration
	usdRate  decimal.Decimal
	limiter  *rate.Limiter
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

// New creates an Oracle. A nil provider serves fallback prices only.
func New(provider Provider, opts Options) *Oracle {
	o := &Oracle{
		provider: provider,
		ttl:      opts.TTL,
		timeout:  opts.FetchTimeout,
		usdRate:  opts.USDRate,
		limiter:  opts.Limiter,
		now:      opts.Now,
		cache:    make(map[string]cacheEntry),
	}
	if o.ttl <= 0 {
		o.ttl = DefaultTTL
	}
	if o.timeout <= 0 {
		o.timeout = DefaultFetchTimeout
	}
	if !o.usdRate.IsPositive() {
		o.usdRate = DefaultUSDRate
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// GetPrice returns a quote for symbol. It never fails: a cached quote is
// returned while fresh, otherwise the provider is asked and any failure
// degrades to the symbol's fallback price.
func (o *Oracle) GetPrice(ctx context.Context, symbol string) model.Quote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if q, ok := o.cached(symbol); ok {
		metrics.RecordCacheHit()
		return q
	}

	v, _, _ := o.group.Do(symbol, func() (any, error) {
		// Another caller may have filled the entry while we waited.
		if q, ok := o.cached(symbol); ok {
			return q, nil
		}
		q := o.fetch(ctx, symbol)
		o.store(q)
		return q, nil
	})

	return v.(model.Quote)
}

// GetPrices fetches every symbol independently; a failure on one symbol
// only affects that symbol's quote.
func (o *Oracle) GetPrices(ctx context.Context, symbols []string) map[string]model.Quote {
	return o.batch(ctx, symbols, o.GetPrice)
}

// Refresh bypasses the cache and re-fetches every symbol.
func (o *Oracle) Refresh(ctx context.Context, symbols []string) map[string]model.Quote {
	return o.batch(ctx, symbols, func(ctx context.Context, symbol string) model.Quote {
		q := o.fetch(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
		o.store(q)
		return q
	})
}

// Invalidate drops all cached quotes.
func (o *Oracle) Invalidate() {
	o.mu.Lock()
	o.cache = make(map[string]cacheEntry)
	o.mu.Unlock()
}

func (o *Oracle) batch(ctx context.Context, symbols []string, get func(context.Context, string) model.Quote) map[string]model.Quote {
	quotes := make(map[string]model.Quote, len(symbols))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(batchConcurrency)

	for _, symbol := range symbols {
		g.Go(func() error {
			q := get(ctx, symbol)
			mu.Lock()
			quotes[q.Symbol] = q
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return quotes
}

func (o *Oracle) cached(symbol string) (model.Quote, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	entry, ok := o.cache[symbol]
	if !ok || !o.now().Before(entry.expiresAt) {
		return model.Quote{}, false
	}
	return entry.quote, true
}

func (o *Oracle) store(q model.Quote) {
	o.mu.Lock()
	o.cache[q.Symbol] = cacheEntry{quote: q, expiresAt: q.FetchedAt.Add(o.ttl)}
	o.mu.Unlock()
}

// fetch asks the provider under a fixed deadline. The deadline is detached
// from the caller's cancellation because the result is shared with other waiters.
func (o *Oracle) fetch(ctx context.Context, symbol string) model.Quote {
	price, err := o.fetchLive(ctx, symbol)
	if err != nil {
		log.Printf("oracle: using fallback price for %s: %v", symbol, err)
		metrics.RecordQuote(model.SourceFallback)
		return model.Quote{
			Symbol:    symbol,
			Price:     FallbackPrice(symbol),
			Source:    model.SourceFallback,
			FetchedAt: o.now(),
		}
	}

	metrics.RecordQuote(model.SourceLive)
	return model.Quote{
		Symbol:    symbol,
		Price:     price.Mul(o.usdRate).Round(2),
		Source:    model.SourceLive,
		FetchedAt: o.now(),
	}
}

func (o *Oracle) fetchLive(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if o.provider == nil {
		return decimal.Zero, apperrors.ErrOracleUnavailable
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	if o.limiter != nil {
		if err := o.limiter.Wait(fetchCtx); err != nil {
			return decimal.Zero, errors.Join(apperrors.ErrOracleUnavailable, err)
		}
	}

	price, err := o.provider.FetchSpotPrice(fetchCtx, symbol)
	if err != nil {
		return decimal.Zero, errors.Join(apperrors.ErrOracleUnavailable, err)
	}
	return price, nil
}
