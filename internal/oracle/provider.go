// Package oracle supplies spot prices in the ledger currency. Quotes come from
// an upstream Provider through a shared TTL cache; when the provider fails or
// times out a deterministic fallback price is returned instead of an error.
package oracle

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider fetches a live USD spot price. Implementations may fail; the
// Oracle turns failures into fallback quotes.
type Provider interface {
	Name() string
	FetchSpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
