package loaders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTxtLoader(t *testing.T) {
	path := writeFile(t, "zakon.txt", "Član 1. Svako ima pravo na život.")

	pages, err := NewTxtLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Član 1. Svako ima pravo na život.", pages[0].Text)
}

func TestTxtLoader_EmptyFileHasNoPages(t *testing.T) {
	path := writeFile(t, "empty.txt", "")

	pages, err := NewTxtLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestMarkdownLoader_StripsImages(t *testing.T) {
	path := writeFile(t, "ustav.md", "# Ustav\n![grb](grb.png)\nČlan 21")

	pages, err := NewMarkdownLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.NotContains(t, pages[0].Text, "grb.png")
	assert.Contains(t, pages[0].Text, "Član 21")
}

func TestHTMLLoader(t *testing.T) {
	path := writeFile(t, "zakon.html", "<html><body><h1>Zakon o radu</h1><p>Član 1</p></body></html>")

	pages, err := NewHTMLLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, "# Zakon o radu")
	assert.Contains(t, pages[0].Text, "Član 1")
}

func TestPdfLoader_RejectsNonPDF(t *testing.T) {
	path := writeFile(t, "fake.pdf", "this is not a pdf")

	_, err := NewPdfLoader().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestDocxLoader_RejectsNonDocx(t *testing.T) {
	path := writeFile(t, "fake.docx", "this is not a zip archive")

	_, err := NewDocxLoader().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestXlsxLoader_OnePagePerSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Taksa"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Iznos"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Zahtev za pasoš"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 2500))
	_, err := f.NewSheet("Prazan")
	require.NoError(t, err)
	_, err = f.NewSheet("Napomene")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Napomene", "A1", "Oslobođeni su građani sa invaliditetom."))

	path := filepath.Join(t.TempDir(), "tarife.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	pages, err := NewXlsxLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Taksa\tIznos\nZahtev za pasoš\t2500", pages[0].Text)
	assert.Equal(t, 3, pages[1].Number)
	assert.Equal(t, "Oslobođeni su građani sa invaliditetom.", pages[1].Text)
}

func TestRegistry_ForPath(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name    string
		file    string
		content string
		want    interface{}
	}{
		{"pdf by extension", "a.pdf", "%PDF-1.4", &PdfLoader{}},
		{"txt by extension", "a.txt", "tekst", &TxtLoader{}},
		{"markdown by extension", "a.MD", "# naslov", &MarkdownLoader{}},
		{"html by extension", "a.htm", "<p>x</p>", &HTMLLoader{}},
		{"docx by extension", "a.docx", "PK", &DocxLoader{}},
		{"xlsx by extension", "a.xlsx", "PK", &XlsxLoader{}},
		{"text detected by content", "zakon", "Član 1. Ovo je običan tekst zakona.", &TxtLoader{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := r.ForPath(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.IsType(t, tt.want, l)
		})
	}
}

func TestRegistry_MissingFile(t *testing.T) {
	_, err := NewRegistry().Load(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestRegistry_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00}, 0o644))

	_, err := NewRegistry().ForPath(path)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
