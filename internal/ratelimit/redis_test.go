package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping redis counter test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCounterArmsTTLWithIncrement(t *testing.T) {
	ctx := context.Background()
	client := openTestRedis(t)
	counter := NewRedisCounter(client)

	key := fmt.Sprintf("ratelimit-test:%d", time.Now().UnixNano())
	t.Cleanup(func() { _ = client.Del(ctx, key).Err() })

	count, err := counter.IncrementAndGet(ctx, key, time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	// The very first increment leaves the key with a TTL, so a counter can
	// never survive its window.
	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0), "window key must carry a TTL")
	require.LessOrEqual(t, ttl, time.Minute)

	count, err = counter.IncrementAndGet(ctx, key, time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// Later hits do not extend the window.
	later, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	require.LessOrEqual(t, later, ttl)

	require.NoError(t, counter.Reset(ctx, key))
	count, err = counter.IncrementAndGet(ctx, key, time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}
