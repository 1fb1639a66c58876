package loaders

import (
	"context"
	"fmt"
	"os"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// HTMLLoader converts a saved law page (for example from the official gazette site)
// to Markdown and returns it as a single page.
type HTMLLoader struct{}

// NewHTMLLoader creates a new HTMLLoader.
func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{}
}

func (l *HTMLLoader) AcceptedExtensions() []string { return []string{".html", ".htm"} }
func (l *HTMLLoader) AcceptedMimeTypes() []string  { return []string{"text/html"} }

func (l *HTMLLoader) Load(ctx context.Context, path string) ([]schema.Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	markdown, err := htmltomarkdown.ConvertString(string(content))
	if err != nil {
		return nil, fmt.Errorf("convert html %s: %w", path, err)
	}
	return singlePage(markdown), nil
}

var _ interfaces.Loader = (*HTMLLoader)(nil)
