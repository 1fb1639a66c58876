package redis

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/go-redis/redis/v8"
)

var (
	client  *redis.Client
	once    sync.Once
	initErr error
)

// GetClient connects to Redis once and returns the shared client.
func GetClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	once.Do(func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		if err := rdb.Ping(ctx).Err(); err != nil {
			initErr = fmt.Errorf("connect to Redis: %w", err)
			return
		}

		log.Printf("connected to Redis at %s", cfg.Address)
		client = rdb
	})

	return client, initErr
}

// Close closes the shared client.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
