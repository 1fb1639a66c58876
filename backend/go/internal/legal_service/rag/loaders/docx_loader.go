package loaders

import (
	"context"
	"fmt"
	"strings"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/unidoc/unioffice/v2/common/license"
	"github.com/unidoc/unioffice/v2/document"
)

// SetOfficeLicense installs a UniDoc metered key. Without one unioffice may
// refuse to open documents.
func SetOfficeLicense(key string) error {
	return license.SetMeteredKey(key)
}

// DocxLoader reads the paragraph text of a Word document as a single page.
// Word has no stable notion of pages, so page breaks are not preserved.
type DocxLoader struct{}

// NewDocxLoader creates a new DocxLoader.
func NewDocxLoader() *DocxLoader {
	return &DocxLoader{}
}

func (l *DocxLoader) AcceptedExtensions() []string { return []string{".docx"} }
func (l *DocxLoader) AcceptedMimeTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

func (l *DocxLoader) Load(ctx context.Context, path string) ([]schema.Page, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx %s: %w", path, err)
	}
	defer doc.Close()

	var lines []string
	for _, p := range doc.Paragraphs() {
		if line := paragraphText(p); line != "" {
			lines = append(lines, line)
		}
	}
	for _, t := range doc.Tables() {
		for _, row := range t.Rows() {
			var cells []string
			for _, cell := range row.Cells() {
				var parts []string
				for _, p := range cell.Paragraphs() {
					if s := paragraphText(p); s != "" {
						parts = append(parts, s)
					}
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			if line := strings.TrimSpace(strings.Join(cells, "\t")); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return singlePage(strings.Join(lines, "\n")), nil
}

func paragraphText(p document.Paragraph) string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return strings.TrimSpace(sb.String())
}

var _ interfaces.Loader = (*DocxLoader)(nil)
