package loaders

import (
	"context"
	"fmt"
	"strings"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/xuri/excelize/v2"
)

// XlsxLoader reads spreadsheet annexes (tariffs, fee schedules). Every sheet
// becomes one page with its rows joined by newlines and cells by tabs.
type XlsxLoader struct{}

// NewXlsxLoader creates a new XlsxLoader.
func NewXlsxLoader() *XlsxLoader {
	return &XlsxLoader{}
}

func (l *XlsxLoader) AcceptedExtensions() []string { return []string{".xlsx"} }
func (l *XlsxLoader) AcceptedMimeTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}
}

func (l *XlsxLoader) Load(ctx context.Context, path string) ([]schema.Page, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()

	var pages []schema.Page
	for i, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			if line := strings.TrimSpace(strings.Join(row, "\t")); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		pages = append(pages, schema.Page{Number: i + 1, Text: strings.Join(lines, "\n")})
	}
	return pages, nil
}

var _ interfaces.Loader = (*XlsxLoader)(nil)
