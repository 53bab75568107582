package textextract

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tranche/internal/common"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ligature", in: "Classi\ufb01cation", want: "Classification"},
		{name: "non-breaking space", in: "Class\u00a0A", want: "Class A"},
		{name: "full-width digits", in: "\uff15.25%", want: "5.25%"},
		{name: "line endings", in: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "blank line runs", in: "a\n\n\n\n\nb", want: "a\n\nb"},
		{name: "trailing spaces", in: "a   \nb\t\n", want: "a\nb"},
		{name: "nul bytes", in: "a\x00b", want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("deal.PDF"))
	assert.True(t, Supported("/x/y/report.docx"))
	assert.True(t, Supported("notes.txt"))
	assert.True(t, Supported("notes.md"))
	assert.False(t, Supported("sheet.xlsx"))
	assert.False(t, Supported("noext"))
}

func TestExtractFilePlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("Pool Balance $50,000,000\r\n"), 0600))

	text, err := New().ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Pool Balance $50,000,000", text)
}

func TestExtractFileErrors(t *testing.T) {
	dir := t.TempDir()
	blank := filepath.Join(dir, "blank.md")
	require.NoError(t, os.WriteFile(blank, []byte(" \n\t\n"), 0600))
	badPDF := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(badPDF, []byte("not a pdf"), 0600))
	badDOCX := filepath.Join(dir, "broken.docx")
	require.NoError(t, os.WriteFile(badDOCX, []byte("not a zip"), 0600))

	tests := []struct {
		wantErr error
		name    string
		path    string
	}{
		{name: "unsupported extension", path: filepath.Join(dir, "deal.xlsx"), wantErr: common.ErrUnsupportedFormat},
		{name: "missing file", path: filepath.Join(dir, "missing.txt"), wantErr: common.ErrExtractionFailed},
		{name: "blank file", path: blank, wantErr: common.ErrEmptyDocument},
		{name: "corrupt pdf", path: badPDF, wantErr: common.ErrExtractionFailed},
		{name: "corrupt docx", path: badDOCX, wantErr: common.ErrExtractionFailed},
	}

	e := &Extractor{TempDir: t.TempDir()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExtractFile(context.Background(), tt.path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtractFileBlankIsAlsoExtractionFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.txt")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	_, err := New().ExtractFile(context.Background(), path)
	assert.ErrorIs(t, err, common.ErrEmptyDocument)
	assert.ErrorIs(t, err, common.ErrExtractionFailed)
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Acme Auto Receivables Trust 2024-1</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Capital </w:t></w:r><w:r><w:t>Structure</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Class A-1 Notes</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>$400,000,000</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Class B Notes</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>$100,000,000</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
<w:p><w:r><w:t>Risk</w:t><w:tab/><w:t>Factors</w:t><w:br/><w:t>Next</w:t></w:r></w:p>
</w:body>
</w:document>`

	text, err := New().Extract(context.Background(), buildDOCX(t, doc), ".docx")
	require.NoError(t, err)

	assert.Equal(t, "Acme Auto Receivables Trust 2024-1\n"+
		"Capital Structure\n"+
		"Class A-1 Notes \t$400,000,000\n"+
		"Class B Notes \t$100,000,000\n"+
		"\n"+
		"Risk\tFactors\n"+
		"Next", text)
}

func TestExtractDOCXWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = New().Extract(context.Background(), buf.Bytes(), ".docx")
	assert.ErrorIs(t, err, errNoDocumentXML)
}
