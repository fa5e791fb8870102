package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price sources reported on a quote.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// Quote is a spot price in the ledger currency.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Asset is a market listing entry.
type Asset struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	MarketCap   decimal.Decimal `json:"marketCap"`
	ImageURL    string          `json:"image"`
	PriceSource string          `json:"priceSource"`
}

// AssetDetail extends Asset with supply and descriptive data.
type AssetDetail struct {
	Asset
	CirculatingSupply decimal.Decimal  `json:"circulatingSupply"`
	TotalSupply       *decimal.Decimal `json:"totalSupply"`
	Description       string           `json:"description"`
	Website           string           `json:"website"`
}

// SearchResult is a catalog match without pricing.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	ImageURL string `json:"image"`
}
