package loaders

import (
	"context"
	"fmt"
	"strings"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/ledongthuc/pdf"
)

// PdfLoader extracts the plain text of every page of a PDF file.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

func (l *PdfLoader) AcceptedExtensions() []string { return []string{".pdf"} }
func (l *PdfLoader) AcceptedMimeTypes() []string  { return []string{"application/pdf"} }

// Load returns one Page per PDF page that yields text. Pages that cannot be
// decoded or carry no text are skipped.
func (l *PdfLoader) Load(ctx context.Context, path string) ([]schema.Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []schema.Page
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := plainText(p)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, schema.Page{Number: i, Text: text})
	}
	return pages, nil
}

// plainText guards against the decoder panicking on malformed content streams.
func plainText(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page: %v", r)
		}
	}()
	return p.GetPlainText(nil)
}

var _ interfaces.Loader = (*PdfLoader)(nil)
