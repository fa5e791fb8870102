package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewFromConfig returns the Locker selected by cfg.Backend and a function
// that releases its resources. The Redis backend is pinged before use.
func NewFromConfig(ctx context.Context, cfg config.LockConfig) (Locker, func() error, error) {
	if cfg.Backend != "redis" {
		return NewLocalLocker(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	l := NewRedisLocker(client, cfg.Prefix, cfg.TTL)
	return l, l.Close, nil
}
