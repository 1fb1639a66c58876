package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/util"
	"github.com/go-redis/redis/v8"
)

// RateLimiter limits a single stream of requests.
type RateLimiter interface {
	// Allow returns true if the request is allowed, otherwise returns false.
	Allow() bool
}

// KeyedLimiter limits each key, usually a client IP, independently.
type KeyedLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

const (
	defaultMaxKeys = 10000
	idleKeyTTL     = time.Hour
)

// PerKey keeps one in-process RateLimiter per key. The least recently seen keys
// are dropped once maxKeys is reached, and keys idle for an hour start over.
type PerKey struct {
	newLimiter func() RateLimiter
	limiters   *util.LRUCache[string, RateLimiter]
}

// NewPerKey creates a PerKey. maxKeys <= 0 uses a default of 10000.
func NewPerKey(newLimiter func() RateLimiter, maxKeys int) *PerKey {
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}
	limiters, _ := util.NewLRU[string, RateLimiter](util.CacheConfig{Capacity: maxKeys, TTL: idleKeyTTL})
	return &PerKey{newLimiter: newLimiter, limiters: limiters}
}

func (p *PerKey) Allow(_ context.Context, key string) (bool, error) {
	l := p.limiters.GetOrPut(key, p.newLimiter)
	return l.Allow(), nil
}

// New builds the limiter named by cfg.Algorithm. rdb is only used by "redisFixedWindow".
func New(cfg config.RateLimiterConfig, rdb *redis.Client) (KeyedLimiter, error) {
	switch cfg.Algorithm {
	case "tokenBucket", "":
		conf := cfg.TokenBucket
		if conf.Rate <= 0 || conf.Capacity <= 0 {
			return nil, fmt.Errorf("tokenBucket needs a positive rate and capacity")
		}
		return NewPerKey(func() RateLimiter { return NewTokenBucket(conf.Rate, conf.Capacity) }, 0), nil
	case "fixedWindow":
		limit, window, err := fixedWindow(cfg.FixedWindow)
		if err != nil {
			return nil, err
		}
		return NewPerKey(func() RateLimiter { return NewFixedWindowCounter(limit, window) }, 0), nil
	case "redisFixedWindow":
		if rdb == nil {
			return nil, fmt.Errorf("redisFixedWindow needs a Redis client")
		}
		limit, window, err := fixedWindow(cfg.FixedWindow)
		if err != nil {
			return nil, err
		}
		return NewRedisFixedWindow(rdb, "ratelimit", limit, window), nil
	default:
		return nil, fmt.Errorf("unknown rate limiter algorithm: %s", cfg.Algorithm)
	}
}

func fixedWindow(conf config.FixedWindowConfig) (int, time.Duration, error) {
	window, err := time.ParseDuration(conf.Window)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid fixedWindow duration: %w", err)
	}
	if conf.Limit <= 0 || window <= 0 {
		return 0, 0, fmt.Errorf("fixedWindow needs a positive limit and window")
	}
	return conf.Limit, window, nil
}
