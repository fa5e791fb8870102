package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/kuberx/portfolio-ledger/internal/oracle"
	"github.com/kuberx/portfolio-ledger/internal/repository"
)

// MarketService serves catalog and price data for the market endpoints.
type MarketService struct {
	prices        PriceSource
	portfolioRepo *repository.PortfolioRepository
}

// NewMarketService creates a new MarketService with the provided dependencies.
func NewMarketService(prices PriceSource, portfolioRepo *repository.PortfolioRepository) *MarketService {
	return &MarketService{
		prices:        prices,
		portfolioRepo: portfolioRepo,
	}
}

// Popular returns the popular asset list priced through the oracle, in list order.
func (s *MarketService) Popular(ctx context.Context) []model.Asset {
	quotes := s.prices.GetPrices(ctx, oracle.PopularSymbols)

	assets := make([]model.Asset, 0, len(oracle.PopularSymbols))
	for _, symbol := range oracle.PopularSymbols {
		info, _ := oracle.Lookup(symbol)
		assets = append(assets, toAsset(info, quotes[symbol]))
	}
	return assets
}

// Detail returns catalog and price data for one symbol. Unknown symbols get
// generic catalog data and a fallback or live price; it never fails.
func (s *MarketService) Detail(ctx context.Context, symbol string) model.AssetDetail {
	info, _ := oracle.Lookup(symbol)
	q := s.prices.GetPrice(ctx, info.Symbol)

	return model.AssetDetail{
		Asset:             toAsset(info, q),
		CirculatingSupply: info.CirculatingSupply,
		TotalSupply:       info.TotalSupply,
		Description:       info.Description,
		Website:           info.Website,
	}
}

// Search matches query against the symbol and name of the popular assets.
func (s *MarketService) Search(query string) []model.SearchResult {
	results := []model.SearchResult{}
	if strings.TrimSpace(query) == "" {
		return results
	}

	for _, info := range oracle.Search(query) {
		results = append(results, model.SearchResult{
			Symbol:   info.Symbol,
			Name:     info.Name,
			ImageURL: info.ImageURL,
		})
	}
	return results
}

// WarmCache re-fetches quotes for the popular list plus every symbol any
// portfolio holds, so user requests hit a fresh cache. It returns the number
// of symbols refreshed.
func (s *MarketService) WarmCache(ctx context.Context) (int, error) {
	held, err := s.portfolioRepo.GetHeldSymbols(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list held symbols: %w", err)
	}

	seen := make(map[string]bool, len(oracle.PopularSymbols)+len(held))
	symbols := make([]string, 0, len(oracle.PopularSymbols)+len(held))
	for _, symbol := range append(append([]string{}, oracle.PopularSymbols...), held...) {
		if !seen[symbol] {
			seen[symbol] = true
			symbols = append(symbols, symbol)
		}
	}

	return len(s.prices.Refresh(ctx, symbols)), nil
}

func toAsset(info oracle.AssetInfo, q model.Quote) model.Asset {
	return model.Asset{
		Symbol:      info.Symbol,
		Name:        info.Name,
		Price:       q.Price,
		MarketCap:   q.Price.Mul(info.CirculatingSupply),
		ImageURL:    info.ImageURL,
		PriceSource: q.Source,
	}
}
