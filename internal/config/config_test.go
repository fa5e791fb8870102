package config

import (
	"testing"
	"time"
)

// TestLoad tests environment parsing and defaults.
//
// WHY: Misconfigured durations or providers must fail at startup instead of
// silently running with a zero timeout or an unknown price source.
func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("ORACLE_PROVIDER", "")
		t.Setenv("ORACLE_CACHE_TTL", "")
		t.Setenv("ORACLE_FETCH_TIMEOUT", "")
		t.Setenv("ORACLE_USD_RATE", "")
		t.Setenv("LOCK_BACKEND", "")
		t.Setenv("SERVER_HOST", "")
		t.Setenv("SERVER_PORT", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		if cfg.Oracle.CacheTTL != 5*time.Minute {
			t.Errorf("Expected cache TTL 5m, got %s", cfg.Oracle.CacheTTL)
		}
		if cfg.Oracle.FetchTimeout != 10*time.Second {
			t.Errorf("Expected fetch timeout 10s, got %s", cfg.Oracle.FetchTimeout)
		}
		if cfg.Oracle.USDRate.String() != "83" {
			t.Errorf("Expected USD rate 83, got %s", cfg.Oracle.USDRate)
		}
		if cfg.Oracle.Provider != "finage" {
			t.Errorf("Expected provider finage, got %s", cfg.Oracle.Provider)
		}
		if cfg.Lock.Backend != "local" {
			t.Errorf("Expected local lock backend, got %s", cfg.Lock.Backend)
		}
		if cfg.Server.Addr != "localhost:5001" {
			t.Errorf("Expected addr localhost:5001, got %s", cfg.Server.Addr)
		}
	})

	t.Run("parses lists and overrides", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
		t.Setenv("FERNET_KEYS", "k1,k2")
		t.Setenv("ORACLE_PROVIDER", "BINANCE")
		t.Setenv("ORACLE_CACHE_TTL", "30s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		if len(cfg.CORS.AllowedOrigins) != 2 {
			t.Errorf("Expected 2 origins, got %v", cfg.CORS.AllowedOrigins)
		}
		if len(cfg.Auth.Keys) != 2 || cfg.Auth.Keys[0] != "k1" {
			t.Errorf("Expected keys [k1 k2], got %v", cfg.Auth.Keys)
		}
		if cfg.Oracle.Provider != "binance" {
			t.Errorf("Expected provider binance, got %s", cfg.Oracle.Provider)
		}
		if cfg.Oracle.CacheTTL != 30*time.Second {
			t.Errorf("Expected cache TTL 30s, got %s", cfg.Oracle.CacheTTL)
		}
	})

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"rejects bad duration", "ORACLE_FETCH_TIMEOUT", "soon"},
		{"rejects negative duration", "ORACLE_CACHE_TTL", "-1m"},
		{"rejects zero usd rate", "ORACLE_USD_RATE", "0"},
		{"rejects unknown provider", "ORACLE_PROVIDER", "coinbase"},
		{"rejects unknown lock backend", "LOCK_BACKEND", "etcd"},
		{"rejects bad redis db", "REDIS_DB", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
