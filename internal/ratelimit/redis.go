package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter keeps window counters in Redis so the limit holds across
// replicas. INCR is atomic, which avoids the undercounting a separate
// read-then-write cycle would allow under concurrency.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, error) {
	// INCR and EXPIRE travel in one pipeline so a failure between the two
	// cannot strand a counter without a TTL. ExpireNX arms the window only
	// on its first hit.
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *RedisCounter) Reset(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
