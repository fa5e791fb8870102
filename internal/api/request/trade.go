// Package request holds the decoded bodies and query parameters of API requests.
package request

import "github.com/shopspring/decimal"

// BuyRequest is the body of POST /api/portfolio/buy.
// Numeric fields are pointers so a missing value can be told apart from zero.
type BuyRequest struct {
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Amount        *decimal.Decimal `json:"amount"`
	Price         *decimal.Decimal `json:"price"`
	PaymentMethod string           `json:"paymentMethod"`
	Notes         string           `json:"notes"`
}

// SellRequest is the body of POST /api/portfolio/sell.
type SellRequest struct {
	Symbol        string           `json:"symbol"`
	Amount        *decimal.Decimal `json:"amount"`
	Price         *decimal.Decimal `json:"price"`
	PaymentMethod string           `json:"paymentMethod"`
	Notes         string           `json:"notes"`
}

// UpdatePricesRequest is the body of PUT /api/portfolio/update-prices.
// Keys are symbols in any case.
type UpdatePricesRequest struct {
	Prices map[string]decimal.Decimal `json:"prices"`
}
