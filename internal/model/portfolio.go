package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts and prices are emitted as JSON numbers, matching what clients submit.
	decimal.MarshalJSONWithoutQuotes = true
}

// Holding is the aggregate position in one symbol within a portfolio.
// Value and profit/loss fields are derived from Amount, AverageBuyPrice and CurrentPrice.
type Holding struct {
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	AverageBuyPrice decimal.Decimal `json:"averageBuyPrice"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	Value           decimal.Decimal `json:"value"`
	ProfitLoss      decimal.Decimal `json:"profitLoss"`
	ProfitLossPct   decimal.Decimal `json:"profitLossPct"`
	ImageURL        string          `json:"imageUrl,omitempty"`
}

// CostBasis returns amount × averageBuyPrice.
func (h Holding) CostBasis() decimal.Decimal {
	return h.Amount.Mul(h.AverageBuyPrice)
}

// Portfolio is a user's set of holdings plus the derived valuation totals.
// Holdings keep the order in which symbols were first bought.
type Portfolio struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	Holdings           []Holding       `json:"holdings"`
	TotalValue         decimal.Decimal `json:"totalValue"`
	TotalInvested      decimal.Decimal `json:"totalInvested"`
	TotalProfitLoss    decimal.Decimal `json:"totalProfitLoss"`
	TotalProfitLossPct decimal.Decimal `json:"totalProfitLossPct"`
	LastUpdated        time.Time       `json:"lastUpdated"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// HoldingIndex returns the index of the holding for symbol, or -1.
func (p *Portfolio) HoldingIndex(symbol string) int {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

// Symbols returns the held symbols in holding order.
func (p *Portfolio) Symbols() []string {
	symbols := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		symbols[i] = h.Symbol
	}
	return symbols
}
