package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// FinageClient fetches last crypto prices from the Finage REST API.
type FinageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// finageLast is the body of GET /last/crypto/{pair}.
type finageLast struct {
	Symbol string           `json:"symbol"`
	Price  *decimal.Decimal `json:"price"`
}

// NewFinageClient creates a Finage client for the given base URL and API key.
// Deadlines come from the caller's context.
func NewFinageClient(baseURL, apiKey string) *FinageClient {
	return &FinageClient{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Name identifies the provider in logs.
func (c *FinageClient) Name() string { return "finage" }

// FetchSpotPrice returns the last USD price for symbol.
//
// Returns an error on transport failure, non-2xx status, or a payload
// without a positive price.
func (c *FinageClient) FetchSpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/last/crypto/%sUSD?apikey=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query finage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decimal.Zero, fmt.Errorf("finage returned status %d for %s", resp.StatusCode, symbol)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read finage response: %w", err)
	}

	var last finageLast
	if err := json.Unmarshal(body, &last); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode finage response: %w", err)
	}

	if last.Price == nil || !last.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("finage returned no price for %s", symbol)
	}

	return *last.Price, nil
}
