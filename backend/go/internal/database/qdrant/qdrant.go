package qdrant

import (
	"fmt"
	"log"
	"sync"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/qdrant/go-client/qdrant"
)

var (
	client  *qdrant.Client
	once    sync.Once
	initErr error
)

// GetClient connects to Qdrant over gRPC once and returns the shared client.
func GetClient(cfg *config.QdrantConfig) (*qdrant.Client, error) {
	once.Do(func() {
		c, err := qdrant.NewClient(&qdrant.Config{
			Host:   cfg.Host,
			Port:   cfg.Port,
			APIKey: cfg.APIKey,
			UseTLS: cfg.UseTLS,
		})
		if err != nil {
			initErr = fmt.Errorf("connect to Qdrant: %w", err)
			return
		}
		log.Printf("connected to Qdrant at %s:%d", cfg.Host, cfg.Port)
		client = c
	})
	return client, initErr
}

// Close closes the shared connection.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
