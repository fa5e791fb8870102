package service

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// Revalue recomputes the portfolio totals from its holdings and running
// TotalInvested, and stamps LastUpdated.
func Revalue(p *model.Portfolio, now time.Time) *model.Portfolio {
	total := decimal.Zero
	for _, h := range p.Holdings {
		total = total.Add(h.Value)
	}

	p.TotalValue = total
	p.TotalProfitLoss = total.Sub(p.TotalInvested)
	p.TotalProfitLossPct = percentOf(p.TotalProfitLoss, p.TotalInvested)
	p.LastUpdated = now.UTC()
	return p
}

// RefreshPrices sets the current price of every holding whose symbol is in
// prices and recomputes its derived fields; other holdings keep their last
// price. It then revalues the portfolio and returns the symbols updated.
func RefreshPrices(p *model.Portfolio, prices map[string]decimal.Decimal, now time.Time) []string {
	// Keys are visited in sorted order so that when two keys name the same
	// symbol the upper-case one wins, then the first in byte order.
	normalized := make(map[string]decimal.Decimal, len(prices))
	for _, symbol := range slices.Sorted(maps.Keys(prices)) {
		key := strings.ToUpper(strings.TrimSpace(symbol))
		if _, ok := normalized[key]; ok && symbol != key {
			continue
		}
		normalized[key] = prices[symbol]
	}

	var updated []string
	for i := range p.Holdings {
		h := &p.Holdings[i]
		price, ok := normalized[h.Symbol]
		if !ok {
			continue
		}
		h.CurrentPrice = price
		revalueHolding(h)
		updated = append(updated, h.Symbol)
	}

	Revalue(p, now)
	return updated
}
