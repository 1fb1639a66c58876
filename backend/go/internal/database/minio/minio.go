package minio

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	client  *minio.Client
	once    sync.Once
	initErr error
)

// GetClient creates the MinIO client once, makes sure the configured bucket exists
// and returns the shared client.
func GetClient(ctx context.Context, cfg *config.MinIOConfig) (*minio.Client, error) {
	once.Do(func() {
		c, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.Secure,
		})
		if err != nil {
			initErr = fmt.Errorf("create MinIO client: %w", err)
			return
		}

		exists, err := c.BucketExists(ctx, cfg.Bucket)
		if err != nil {
			initErr = fmt.Errorf("MinIO bucket check failed: %w", err)
			return
		}
		if !exists {
			if err := c.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
				initErr = fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
				return
			}
			log.Printf("created MinIO bucket %s", cfg.Bucket)
		}

		log.Printf("connected to MinIO at %s", cfg.Endpoint)
		client = c
	})

	return client, initErr
}
