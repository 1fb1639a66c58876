package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"

	"github.com/minio/minio-go/v7"
)

// MinIO stores files in an S3-compatible bucket and downloads them to a temporary
// file for ingestion.
type MinIO struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates the storage on an already connected client.
func NewMinIO(client *minio.Client, bucket string) *MinIO {
	return &MinIO{client: client, bucket: bucket}
}

func (m *MinIO) Save(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	key := objectName(name)
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", key, m.bucket, err)
	}
	return key, nil
}

// Resolve downloads the object into a temporary file that keeps the object's extension.
func (m *MinIO) Resolve(ctx context.Context, location string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "law-*"+path.Ext(location))
	if err != nil {
		return "", nil, err
	}
	tmp.Close()
	cleanup := func() { os.Remove(tmp.Name()) }

	if err := m.client.FGetObject(ctx, m.bucket, location, tmp.Name(), minio.GetObjectOptions{}); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("download %s from bucket %s: %w", location, m.bucket, err)
	}
	return tmp.Name(), cleanup, nil
}

func (m *MinIO) Ping(ctx context.Context) error {
	ok, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", m.bucket)
	}
	return nil
}
