package oracle

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AssetInfo is static listing data for a supported asset.
// FallbackPrice is already in the ledger currency.
type AssetInfo struct {
	Symbol            string
	Name              string
	ImageURL          string
	CirculatingSupply decimal.Decimal
	TotalSupply       *decimal.Decimal
	FallbackPrice     decimal.Decimal
	Description       string
	Website           string
}

// DefaultFallbackPrice is used for symbols outside the catalog.
var DefaultFallbackPrice = decimal.NewFromInt(1000)

var defaultCirculatingSupply = decimal.NewFromInt(1000000)

// PopularSymbols is the market listing, in display order.
var PopularSymbols = []string{"BTC", "ETH", "BNB", "ADA", "SOL", "DOT", "MATIC", "LTC", "AVAX", "LINK"}

func supply(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

var catalog = map[string]AssetInfo{
	"BTC": {
		Name:              "Bitcoin",
		ImageURL:          "https://cryptologos.cc/logos/bitcoin-btc-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(19500000),
		TotalSupply:       supply(21000000),
		FallbackPrice:     decimal.NewFromInt(2650000),
		Description:       "Bitcoin is the first successful internet money based on peer-to-peer technology.",
		Website:           "https://bitcoin.org",
	},
	"ETH": {
		Name:              "Ethereum",
		ImageURL:          "https://cryptologos.cc/logos/ethereum-eth-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(120000000),
		FallbackPrice:     decimal.NewFromInt(185000),
		Description:       "Ethereum is a decentralized platform for smart contracts and decentralized applications.",
		Website:           "https://ethereum.org",
	},
	"BNB": {
		Name:              "BNB",
		ImageURL:          "https://cryptologos.cc/logos/bnb-bnb-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(150000000),
		FallbackPrice:     decimal.NewFromInt(22500),
		Description:       "BNB is the native cryptocurrency of the Binance ecosystem.",
		Website:           "https://www.binance.com",
	},
	"ADA": {
		Name:              "Cardano",
		ImageURL:          "https://cryptologos.cc/logos/cardano-ada-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(35000000000),
		TotalSupply:       supply(45000000000),
		FallbackPrice:     decimal.NewFromInt(42),
		Description:       "Cardano is a blockchain platform for changemakers, innovators, and visionaries.",
		Website:           "https://cardano.org",
	},
	"SOL": {
		Name:              "Solana",
		ImageURL:          "https://cryptologos.cc/logos/solana-sol-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(400000000),
		FallbackPrice:     decimal.NewFromInt(8750),
		Description:       "Solana is a high-performance blockchain supporting builders around the world.",
		Website:           "https://solana.com",
	},
	"DOT": {
		Name:              "Polkadot",
		ImageURL:          "https://cryptologos.cc/logos/polkadot-new-dot-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(1200000000),
		FallbackPrice:     decimal.NewFromInt(4200),
		Description:       "Polkadot enables cross-blockchain transfers of any type of data or asset.",
		Website:           "https://polkadot.network",
	},
	"MATIC": {
		Name:              "Polygon",
		ImageURL:          "https://cryptologos.cc/logos/polygon-matic-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(9000000000),
		TotalSupply:       supply(10000000000),
		FallbackPrice:     decimal.NewFromInt(70),
		Description:       "Polygon is a decentralized platform that provides tools to create interconnected blockchain networks.",
		Website:           "https://polygon.technology",
	},
	"LTC": {
		Name:              "Litecoin",
		ImageURL:          "https://cryptologos.cc/logos/litecoin-ltc-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(75000000),
		TotalSupply:       supply(84000000),
		FallbackPrice:     decimal.NewFromInt(6500),
		Description:       "Litecoin is a cryptocurrency that enables instant, near-zero cost payments.",
		Website:           "https://litecoin.org",
	},
	"AVAX": {
		Name:              "Avalanche",
		ImageURL:          "https://cryptologos.cc/logos/avalanche-avax-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(350000000),
		TotalSupply:       supply(720000000),
		FallbackPrice:     decimal.NewFromInt(2800),
		Description:       "Avalanche is an open, programmable smart contracts platform for decentralized applications.",
		Website:           "https://avax.network",
	},
	"LINK": {
		Name:              "Chainlink",
		ImageURL:          "https://cryptologos.cc/logos/chainlink-link-logo.png?v=029",
		CirculatingSupply: decimal.NewFromInt(500000000),
		TotalSupply:       supply(1000000000),
		FallbackPrice:     decimal.NewFromInt(1200),
		Description:       "Chainlink is a decentralized oracle network that connects smart contracts with real-world data.",
		Website:           "https://chain.link",
	},
}

// Lookup returns catalog data for symbol. Unknown symbols get generic
// values; known reports whether the symbol is in the catalog.
func Lookup(symbol string) (info AssetInfo, known bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	info, known = catalog[symbol]
	if !known {
		info = AssetInfo{
			Name:              symbol,
			ImageURL:          fmt.Sprintf("https://cryptologos.cc/logos/%s-logo.png", strings.ToLower(symbol)),
			CirculatingSupply: defaultCirculatingSupply,
			FallbackPrice:     DefaultFallbackPrice,
			Website:           "#",
		}
		info.Description = symbol + " is a cryptocurrency."
	}
	info.Symbol = symbol
	return info, known
}

// FallbackPrice returns the deterministic substitute price for symbol.
func FallbackPrice(symbol string) decimal.Decimal {
	info, _ := Lookup(symbol)
	return info.FallbackPrice
}

// Search matches query against symbol and name of the popular assets.
func Search(query string) []AssetInfo {
	term := strings.ToUpper(strings.TrimSpace(query))
	results := []AssetInfo{}
	for _, symbol := range PopularSymbols {
		info, _ := Lookup(symbol)
		if strings.Contains(symbol, term) || strings.Contains(strings.ToUpper(info.Name), term) {
			results = append(results, info)
		}
	}
	return results
}
