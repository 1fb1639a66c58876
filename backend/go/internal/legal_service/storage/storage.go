package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStorage keeps uploaded law files until they are ingested.
type BlobStorage interface {
	// Save stores the content under a unique location derived from name.
	Save(ctx context.Context, name string, r io.Reader, size int64) (location string, err error)
	// Resolve returns a local file path for location. cleanup must be called once
	// the caller no longer needs the file.
	Resolve(ctx context.Context, location string) (path string, cleanup func(), err error)
	Ping(ctx context.Context) error
}

const lawsPrefix = "laws"

// objectName builds "laws/<uuid>_<base name>", keeping the extension so the
// loader can be chosen from it later.
func objectName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "document"
	}
	return fmt.Sprintf("%s/%s_%s", lawsPrefix, uuid.NewString(), base)
}
