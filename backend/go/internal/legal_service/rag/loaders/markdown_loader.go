package loaders

import (
	"context"
	"os"
	"regexp"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
)

// MarkdownLoader reads a Markdown file as a single page.
type MarkdownLoader struct{}

// NewMarkdownLoader creates a new MarkdownLoader.
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

// imageRegex matches image syntax, e.g. ![alt](path/to/image.jpg).
var imageRegex = regexp.MustCompile(`!\[.*?\]\(.*?\)`)

func (l *MarkdownLoader) AcceptedExtensions() []string { return []string{".md", ".markdown"} }
func (l *MarkdownLoader) AcceptedMimeTypes() []string  { return []string{"text/markdown"} }

// Load returns the file text with image references removed; they carry no law text.
func (l *MarkdownLoader) Load(ctx context.Context, path string) ([]schema.Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return singlePage(imageRegex.ReplaceAllString(string(content), "")), nil
}

var _ interfaces.Loader = (*MarkdownLoader)(nil)
