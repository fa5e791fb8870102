package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestRedisLocker runs against a live server when LEDGER_TEST_REDIS_ADDR is set.
func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("LEDGER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEDGER_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	l := NewRedisLocker(client, "ledger:test:", 5*time.Second)
	t.Cleanup(func() { l.Close() })

	release, err := l.Lock(context.Background(), "portfolio:u1")
	if err != nil {
		t.Fatalf("Lock() returned unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "portfolio:u1"); err == nil {
		t.Error("Expected second Lock() to time out while held")
	}

	release()

	release2, err := l.Lock(context.Background(), "portfolio:u1")
	if err != nil {
		t.Fatalf("Lock() after release returned unexpected error: %v", err)
	}
	release2()
}
