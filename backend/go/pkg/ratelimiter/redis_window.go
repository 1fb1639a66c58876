package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// windowCounter increments a counter that expires after ttl and returns the new value.
type windowCounter interface {
	incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type redisCounter struct {
	client *redis.Client
}

func (r redisCounter) incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	n := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return n.Val(), nil
}

// RedisFixedWindow is a fixed window limiter whose counters live in Redis, so
// every replica of the service shares the same budget per key.
type RedisFixedWindow struct {
	counter windowCounter
	prefix  string
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRedisFixedWindow creates a limiter allowing limit requests per key and window.
func NewRedisFixedWindow(client *redis.Client, prefix string, limit int, window time.Duration) *RedisFixedWindow {
	return &RedisFixedWindow{
		counter: redisCounter{client: client},
		prefix:  prefix,
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow counts the request in the current window. Windows are aligned to
// multiples of the window length so all replicas agree on their boundaries.
func (r *RedisFixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	slot := r.now().UnixNano() / int64(r.window)
	n, err := r.counter.incr(ctx, fmt.Sprintf("%s:%s:%d", r.prefix, key, slot), r.window)
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return n <= int64(r.limit), nil
}
