package loaders

import (
	"context"
	"os"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
)

// TxtLoader reads a plain text file as a single page.
type TxtLoader struct{}

// NewTxtLoader creates a new TxtLoader.
func NewTxtLoader() *TxtLoader {
	return &TxtLoader{}
}

func (l *TxtLoader) AcceptedExtensions() []string { return []string{".txt"} }
func (l *TxtLoader) AcceptedMimeTypes() []string  { return []string{"text/plain"} }

func (l *TxtLoader) Load(ctx context.Context, path string) ([]schema.Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return singlePage(string(content)), nil
}

func singlePage(text string) []schema.Page {
	if text == "" {
		return nil
	}
	return []schema.Page{{Number: 1, Text: text}}
}

var _ interfaces.Loader = (*TxtLoader)(nil)
