package loaders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrDocumentNotFound is returned when the source file does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnsupportedType is returned when no loader accepts the file.
	ErrUnsupportedType = errors.New("unsupported document type")
)

// TypedLoader is a Loader that declares which files it can read.
type TypedLoader interface {
	interfaces.Loader
	AcceptedExtensions() []string
	AcceptedMimeTypes() []string
}

// Registry picks a loader for a file by extension, then by detected MIME type.
// It implements interfaces.Loader itself so the ingestion pipeline needs only one.
type Registry struct {
	loaders []TypedLoader
}

// NewRegistry creates a registry with every built-in loader.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewPdfLoader())
	r.Register(NewTxtLoader())
	r.Register(NewMarkdownLoader())
	r.Register(NewHTMLLoader())
	r.Register(NewDocxLoader())
	r.Register(NewXlsxLoader())
	return r
}

// Register adds a loader. Earlier loaders win when several accept a file.
func (r *Registry) Register(l TypedLoader) {
	r.loaders = append(r.loaders, l)
}

// ForPath returns the loader able to read path.
func (r *Registry) ForPath(path string) (interfaces.Loader, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDocumentNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, l := range r.loaders {
		if slices.Contains(l.AcceptedExtensions(), ext) {
			return l, nil
		}
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect MIME type of %s: %w", path, err)
	}
	for _, l := range r.loaders {
		if accepts(mtype, l) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
}

// Load reads path with the matching loader.
func (r *Registry) Load(ctx context.Context, path string) ([]schema.Page, error) {
	l, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, path)
}

func accepts(mtype *mimetype.MIME, l TypedLoader) bool {
	if slices.Contains(l.AcceptedExtensions(), mtype.Extension()) {
		return true
	}
	return slices.ContainsFunc(l.AcceptedMimeTypes(), mtype.Is)
}

var _ interfaces.Loader = (*Registry)(nil)
