package main

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatINR renders an amount in rupees with the currency's grouping and
// symbol, rounding to paise.
func formatINR(d decimal.Decimal) string {
	cur := money.GetCurrency(money.INR)
	return cur.Formatter().Format(d.Shift(int32(cur.Fraction)).Round(0).IntPart())
}
