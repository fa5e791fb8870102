package oracle

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

// BinanceClient reads spot prices from Binance's public ticker, quoting
// USDT as USD.
type BinanceClient struct {
	client *binance.Client
}

// NewBinanceClient creates a public (unauthenticated) Binance price client.
// An empty baseURL keeps the library default.
func NewBinanceClient(baseURL string) *BinanceClient {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	return &BinanceClient{client: client}
}

// Name identifies the provider in logs.
func (c *BinanceClient) Name() string { return "binance" }

// FetchSpotPrice returns the {symbol}USDT ticker price.
func (c *BinanceClient) FetchSpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	pair := symbol + "USDT"

	prices, err := c.client.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query binance ticker %s: %w", pair, err)
	}

	for _, p := range prices {
		if p.Symbol != pair {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse binance price %q: %w", p.Price, err)
		}
		if !price.IsPositive() {
			return decimal.Zero, fmt.Errorf("binance returned non-positive price for %s", pair)
		}
		return price, nil
	}

	return decimal.Zero, fmt.Errorf("binance returned no price for %s", pair)
}
