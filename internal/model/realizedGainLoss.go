package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RealizedGainLoss records the outcome of one completed sell.
// SaleProceeds is gross value less fee; RealizedGainLoss is SaleProceeds - CostBasis.
type RealizedGainLoss struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	TradeID          string          `json:"tradeId"`
	Symbol           string          `json:"symbol"`
	AmountSold       decimal.Decimal `json:"amountSold"`
	CostBasis        decimal.Decimal `json:"costBasis"`
	SaleProceeds     decimal.Decimal `json:"saleProceeds"`
	RealizedGainLoss decimal.Decimal `json:"realizedGainLoss"`
	CreatedAt        time.Time       `json:"createdAt"`
}
