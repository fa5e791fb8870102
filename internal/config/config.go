package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Oracle   OracleConfig
	Lock     LockConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds the Fernet keys used to issue and verify bearer tokens.
// The first key signs new tokens; all keys are accepted for verification.
type AuthConfig struct {
	Keys     []string
	TokenTTL time.Duration
}

// OracleConfig holds price oracle configuration.
type OracleConfig struct {
	Provider     string // finage, binance or none
	BaseURL      string // provider endpoint, empty keeps the client default
	APIKey       string
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	USDRate      decimal.Decimal // multiplier from the provider's USD quote to the ledger currency
	RateLimit    float64         // upstream requests per second
	RateBurst    int
	WarmSchedule string // cron spec, empty disables cache warming
}

// LockConfig selects the per-user lock backend.
type LockConfig struct {
	Backend       string // local or redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_ledger.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Auth: AuthConfig{
			Keys: splitList(os.Getenv("FERNET_KEYS")),
		},
		Oracle: OracleConfig{
			Provider:     strings.ToLower(getEnv("ORACLE_PROVIDER", "finage")),
			APIKey:       os.Getenv("FINAGE_API_KEY"),
			WarmSchedule: getEnv("ORACLE_WARM_SCHEDULE", "@every 5m"),
		},
		Lock: LockConfig{
			Backend:       strings.ToLower(getEnv("LOCK_BACKEND", "local")),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			Prefix:        getEnv("LOCK_PREFIX", "ledger:lock:"),
		},
	}

	var err error
	if config.Auth.TokenTTL, err = getDuration("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if config.Oracle.CacheTTL, err = getDuration("ORACLE_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if config.Oracle.FetchTimeout, err = getDuration("ORACLE_FETCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.Oracle.RateLimit, err = getFloat("ORACLE_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if config.Oracle.RateBurst, err = getInt("ORACLE_RATE_BURST", 10); err != nil {
		return nil, err
	}
	if config.Lock.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if config.Lock.TTL, err = getDuration("LOCK_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	rate := getEnv("ORACLE_USD_RATE", "83")
	config.Oracle.USDRate, err = decimal.NewFromString(rate)
	if err != nil || !config.Oracle.USDRate.IsPositive() {
		return nil, fmt.Errorf("invalid ORACLE_USD_RATE %q: must be a positive decimal", rate)
	}

	switch config.Oracle.Provider {
	case "finage":
		config.Oracle.BaseURL = getEnv("FINAGE_API_URL", "https://api.finage.co.uk")
	case "binance":
		config.Oracle.BaseURL = os.Getenv("BINANCE_API_URL")
	case "none":
	default:
		return nil, fmt.Errorf("invalid ORACLE_PROVIDER %q: expected finage, binance or none", config.Oracle.Provider)
	}

	switch config.Lock.Backend {
	case "local", "redis":
	default:
		return nil, fmt.Errorf("invalid LOCK_BACKEND %q: expected local or redis", config.Lock.Backend)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, value)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, value)
	}
	return i, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number", key, value)
	}
	return f, nil
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
