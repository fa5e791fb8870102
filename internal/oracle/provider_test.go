package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFinageClient_FetchSpotPrice(t *testing.T) {
	t.Run("parses last price", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/last/crypto/BTCUSD" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("apikey") != "secret" {
				t.Errorf("Expected apikey query parameter")
			}
			w.Write([]byte(`{"symbol":"BTCUSD","price":64250.5,"timestamp":1700000000000}`)) //nolint:errcheck
		}))
		defer server.Close()

		price, err := NewFinageClient(server.URL+"/", "secret").FetchSpotPrice(context.Background(), "BTC")
		if err != nil {
			t.Fatalf("FetchSpotPrice() returned unexpected error: %v", err)
		}
		if !price.Equal(decimal.RequireFromString("64250.5")) {
			t.Errorf("Expected 64250.5, got %s", price)
		}
	})

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-2xx status", http.StatusTooManyRequests, `{"error":"rate limited"}`},
		{"malformed payload", http.StatusOK, `not json`},
		{"missing price", http.StatusOK, `{"symbol":"BTCUSD"}`},
		{"zero price", http.StatusOK, `{"symbol":"BTCUSD","price":0}`},
	}

	for _, tt := range tests {
		t.Run("fails on "+tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer server.Close()

			if _, err := NewFinageClient(server.URL, "k").FetchSpotPrice(context.Background(), "BTC"); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestBinanceClient_FetchSpotPrice(t *testing.T) {
	t.Run("parses ticker price", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("symbol") != "ETHUSDT" {
				t.Errorf("Expected symbol ETHUSDT, got %s", r.URL.Query().Get("symbol"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"symbol":"ETHUSDT","price":"3100.12000000"}`)) //nolint:errcheck
		}))
		defer server.Close()

		price, err := NewBinanceClient(server.URL).FetchSpotPrice(context.Background(), "ETH")
		if err != nil {
			t.Fatalf("FetchSpotPrice() returned unexpected error: %v", err)
		}
		if !price.Equal(decimal.RequireFromString("3100.12")) {
			t.Errorf("Expected 3100.12, got %s", price)
		}
	})

	t.Run("fails on error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`)) //nolint:errcheck
		}))
		defer server.Close()

		if _, err := NewBinanceClient(server.URL).FetchSpotPrice(context.Background(), "NOPE"); err == nil {
			t.Error("Expected error, got nil")
		}
	})
}

func TestCatalog(t *testing.T) {
	t.Run("known symbol", func(t *testing.T) {
		info, known := Lookup("dot")
		if !known {
			t.Fatal("Expected DOT to be known")
		}
		if info.Name != "Polkadot" || info.ImageURL != "https://cryptologos.cc/logos/polkadot-new-dot-logo.png?v=029" {
			t.Errorf("Unexpected DOT info: %+v", info)
		}
		if info.TotalSupply != nil {
			t.Errorf("Expected nil total supply for DOT, got %s", info.TotalSupply)
		}
	})

	t.Run("unknown symbol gets generic data", func(t *testing.T) {
		info, known := Lookup("PEPE")
		if known {
			t.Fatal("Expected PEPE to be unknown")
		}
		if info.ImageURL != "https://cryptologos.cc/logos/pepe-logo.png" {
			t.Errorf("Unexpected image URL %s", info.ImageURL)
		}
		if !info.CirculatingSupply.Equal(decimal.NewFromInt(1000000)) {
			t.Errorf("Unexpected supply %s", info.CirculatingSupply)
		}
		if !FallbackPrice("PEPE").Equal(DefaultFallbackPrice) {
			t.Errorf("Expected default fallback price")
		}
	})

	t.Run("fallback prices are deterministic", func(t *testing.T) {
		want := map[string]int64{
			"BTC": 2650000, "ETH": 185000, "BNB": 22500, "ADA": 42, "SOL": 8750,
			"DOT": 4200, "MATIC": 70, "LTC": 6500, "AVAX": 2800, "LINK": 1200,
		}
		for symbol, price := range want {
			if !FallbackPrice(symbol).Equal(decimal.NewFromInt(price)) {
				t.Errorf("Expected fallback %d for %s, got %s", price, symbol, FallbackPrice(symbol))
			}
		}
	})

	t.Run("search matches symbol or name", func(t *testing.T) {
		if got := Search("coin"); len(got) != 2 {
			t.Errorf("Expected Bitcoin and Litecoin, got %d results", len(got))
		}
		if got := Search("eth"); len(got) != 1 || got[0].Symbol != "ETH" {
			t.Errorf("Expected ETH, got %+v", got)
		}
		if got := Search("zzz"); len(got) != 0 {
			t.Errorf("Expected no results, got %d", len(got))
		}
	})
}
