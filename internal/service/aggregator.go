package service

import (
	"fmt"

	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/shopspring/decimal"
)

var (
	feeRate = decimal.RequireFromString("0.01")
	hundred = decimal.NewFromInt(100)
)

// pctPlaces is the precision of stored profit/loss percentages.
const pctPlaces = 4

// TradeFee returns the 1% fee charged on a trade's gross value.
// The fee is journaled only; it never changes holdings or cost basis.
func TradeFee(gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(feeRate)
}

// percentOf returns part/whole × 100, or zero when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(pctPlaces)
}

// revalueHolding recomputes the holding's derived fields from its current price.
func revalueHolding(h *model.Holding) {
	cost := h.CostBasis()
	h.Value = h.Amount.Mul(h.CurrentPrice)
	h.ProfitLoss = h.Value.Sub(cost)
	h.ProfitLossPct = percentOf(h.ProfitLoss, cost)
}

// BuyLeg describes the asset being bought.
type BuyLeg struct {
	Symbol   string
	Name     string
	ImageURL string
	Amount   decimal.Decimal
	Price    decimal.Decimal
}

// ApplyBuy folds a buy into the portfolio and returns the updated holding.
//
// A new symbol starts at the trade price. An existing holding is
// re-averaged as (oldAmount × oldAvg + amount × price) / (oldAmount + amount).
// In both cases the current price becomes the trade price and TotalInvested
// grows by the gross trade value. Portfolio totals are left to Revalue.
func ApplyBuy(p *model.Portfolio, leg BuyLeg) model.Holding {
	gross := leg.Amount.Mul(leg.Price)
	p.TotalInvested = p.TotalInvested.Add(gross)

	idx := p.HoldingIndex(leg.Symbol)
	if idx < 0 {
		p.Holdings = append(p.Holdings, model.Holding{
			Symbol:          leg.Symbol,
			Name:            leg.Name,
			Amount:          leg.Amount,
			AverageBuyPrice: leg.Price,
			CurrentPrice:    leg.Price,
			ImageURL:        leg.ImageURL,
		})
		idx = len(p.Holdings) - 1
	} else {
		h := &p.Holdings[idx]
		newAmount := h.Amount.Add(leg.Amount)
		h.AverageBuyPrice = h.CostBasis().Add(gross).Div(newAmount)
		h.Amount = newAmount
		h.CurrentPrice = leg.Price
	}

	revalueHolding(&p.Holdings[idx])
	return p.Holdings[idx]
}

// SellResult is the outcome of ApplySell.
type SellResult struct {
	Holding       model.Holding   // state after the sell; zero amount when removed
	Removed       bool            // the holding was exhausted and dropped
	SoldCostBasis decimal.Decimal // amount × averageBuyPrice of the sold units
	SaleProceeds  decimal.Decimal // gross sale value less fee
}

// CheckSell reports whether the portfolio can sell amount of symbol.
func CheckSell(p *model.Portfolio, symbol string, amount decimal.Decimal) error {
	idx := p.HoldingIndex(symbol)
	if idx < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrInsufficientHolding, symbol)
	}
	if held := p.Holdings[idx].Amount; held.LessThan(amount) {
		return fmt.Errorf("%w: holding %s %s, requested %s", apperrors.ErrInsufficientBalance, held, symbol, amount)
	}
	return nil
}

// ApplySell removes amount of symbol from the portfolio.
//
// The remaining units keep their average cost and last-known market price;
// the sale price only determines proceeds. TotalInvested shrinks by the sold
// units' cost basis. A holding sold down to zero is removed and releases all
// of its remaining cost, so a fully exited portfolio has nothing invested.
// On error the portfolio is not modified.
func ApplySell(p *model.Portfolio, symbol string, amount, price decimal.Decimal) (SellResult, error) {
	if err := CheckSell(p, symbol, amount); err != nil {
		return SellResult{}, err
	}

	idx := p.HoldingIndex(symbol)
	h := &p.Holdings[idx]

	gross := amount.Mul(price)
	result := SellResult{
		SoldCostBasis: soldCostBasis(p, idx, amount),
		SaleProceeds:  gross.Sub(TradeFee(gross)),
	}

	h.Amount = h.Amount.Sub(amount)
	p.TotalInvested = p.TotalInvested.Sub(result.SoldCostBasis)

	if h.Amount.IsZero() {
		result.Holding = *h
		result.Removed = true
		p.Holdings = append(p.Holdings[:idx], p.Holdings[idx+1:]...)
		return result, nil
	}

	revalueHolding(h)
	result.Holding = *h
	return result, nil
}

// soldCostBasis is the cost released by selling amount of the holding at idx.
// A full exit releases whatever TotalInvested still attributes to the holding,
// not amount times a truncated average. The result never exceeds TotalInvested.
func soldCostBasis(p *model.Portfolio, idx int, amount decimal.Decimal) decimal.Decimal {
	h := p.Holdings[idx]
	cost := amount.Mul(h.AverageBuyPrice)
	if amount.Equal(h.Amount) {
		others := decimal.Zero
		for i, other := range p.Holdings {
			if i != idx {
				others = others.Add(other.CostBasis())
			}
		}
		cost = p.TotalInvested.Sub(others)
	}
	if cost.GreaterThan(p.TotalInvested) {
		cost = p.TotalInvested
	}
	if cost.IsNegative() {
		cost = decimal.Zero
	}
	return cost
}
