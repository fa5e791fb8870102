package validation

import (
	"fmt"
	"strings"

	"github.com/kuberx/portfolio-ledger/internal/api/request"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/shopspring/decimal"
)

const (
	maxSymbolLength = 20
	maxNameLength   = 100
	maxNotesLength  = 500
)

// ValidateBuy validates a buy request.
//
// Required fields:
//   - symbol: non-empty, at most 20 characters
//   - name: non-empty, at most 100 characters
//   - amount: greater than zero
//   - price: zero or greater
//
// Optional fields:
//   - paymentMethod: one of wallet, upi, bank_transfer, card
//   - notes: at most 500 characters
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateBuy(req request.BuyRequest) error {
	errors := make(map[string]string)

	validateSymbol(errors, req.Symbol)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > maxNameLength {
		errors["name"] = fmt.Sprintf("name must be %d characters or less", maxNameLength)
	}

	validateAmount(errors, req.Amount)
	validatePrice(errors, req.Price)
	validatePaymentMethod(errors, req.PaymentMethod)
	validateNotes(errors, req.Notes)

	return result(errors)
}

// ValidateSell validates a sell request. Rules match ValidateBuy without the name field.
func ValidateSell(req request.SellRequest) error {
	errors := make(map[string]string)

	validateSymbol(errors, req.Symbol)
	validateAmount(errors, req.Amount)
	validatePrice(errors, req.Price)
	validatePaymentMethod(errors, req.PaymentMethod)
	validateNotes(errors, req.Notes)

	return result(errors)
}

// ValidateUpdatePrices validates a bulk price update.
// The map must be non-empty and every price must be greater than zero.
func ValidateUpdatePrices(req request.UpdatePricesRequest) error {
	errors := make(map[string]string)

	if len(req.Prices) == 0 {
		errors["prices"] = "prices must contain at least one symbol"
	}

	seen := make(map[string]string, len(req.Prices))
	for symbol, price := range req.Prices {
		key := strings.ToUpper(strings.TrimSpace(symbol))
		if key == "" {
			errors["prices"] = "symbol keys cannot be empty"
			continue
		}
		if other, ok := seen[key]; ok {
			a, b := min(symbol, other), max(symbol, other)
			errors["prices"] = fmt.Sprintf("symbols %q and %q refer to the same asset", a, b)
		}
		seen[key] = symbol
		if !price.IsPositive() {
			errors["prices."+symbol] = "price must be positive"
		}
	}

	return result(errors)
}

func validateSymbol(errors map[string]string, symbol string) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		errors["symbol"] = "symbol is required"
	} else if len(symbol) > maxSymbolLength {
		errors["symbol"] = fmt.Sprintf("symbol must be %d characters or less", maxSymbolLength)
	}
}

func validateAmount(errors map[string]string, amount *decimal.Decimal) {
	if amount == nil {
		errors["amount"] = "amount is required"
	} else if !amount.IsPositive() {
		errors["amount"] = "amount must be positive"
	}
}

func validatePrice(errors map[string]string, price *decimal.Decimal) {
	if price == nil {
		errors["price"] = "price is required"
	} else if price.IsNegative() {
		errors["price"] = "price cannot be negative"
	}
}

func validatePaymentMethod(errors map[string]string, method string) {
	if method != "" && !model.ValidPaymentMethod[method] {
		errors["paymentMethod"] = fmt.Sprintf("invalid payment method: %s", method)
	}
}

func validateNotes(errors map[string]string, notes string) {
	if len(notes) > maxNotesLength {
		errors["notes"] = fmt.Sprintf("notes must be %d characters or less", maxNotesLength)
	}
}
