package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files under a directory on the server's disk.
type Local struct {
	root string
}

// NewLocal creates the storage rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(root, lawsPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Save(ctx context.Context, name string, r io.Reader, _ int64) (string, error) {
	location := objectName(name)
	f, err := os.Create(filepath.Join(l.root, filepath.FromSlash(location)))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", location, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", location, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return location, nil
}

// Resolve maps location to its absolute path. Locations escaping the root are rejected.
func (l *Local) Resolve(_ context.Context, location string) (string, func(), error) {
	path := filepath.Join(l.root, filepath.FromSlash(location))
	if !strings.HasPrefix(path, l.root+string(filepath.Separator)) {
		return "", nil, fmt.Errorf("location %q is outside the storage root", location)
	}
	return path, func() {}, nil
}

func (l *Local) Ping(context.Context) error {
	_, err := os.Stat(l.root)
	return err
}
