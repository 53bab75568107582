// Package textextract turns PDF, DOCX and plain-text documents into the
// normalized plain text the extraction engine consumes.
package textextract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/service"
)

// Supported file extensions.
const (
	ExtPDF      = ".pdf"
	ExtDOCX     = ".docx"
	ExtText     = ".txt"
	ExtMarkdown = ".md"
)

// Extractor reads documents from disk. The zero value is ready to use.
type Extractor struct {
	// TempDir is where PDF content streams are unpacked. Empty means os.TempDir.
	TempDir string
}

var _ service.TextSource = (*Extractor)(nil)

// New creates an extractor using the system temp directory.
func New() *Extractor {
	return &Extractor{}
}

// Supported reports whether path has an extension this package can read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtPDF, ExtDOCX, ExtText, ExtMarkdown:
		return true
	}
	return false
}

// ExtractFile reads path and returns its normalized text. Read and decode
// failures wrap common.ErrExtractionFailed; unknown extensions wrap
// common.ErrUnsupportedFormat.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the operator
	if err != nil {
		return "", common.NewExtractionError(path, err)
	}

	text, err := e.Extract(ctx, data, ext)
	if err != nil {
		return "", common.NewExtractionError(path, err)
	}
	return text, nil
}

// Extract decodes data according to ext.
func (e *Extractor) Extract(ctx context.Context, data []byte, ext string) (string, error) {
	var (
		raw string
		err error
	)

	switch strings.ToLower(ext) {
	case ExtPDF:
		raw, err = e.pdfText(ctx, data)
	case ExtDOCX:
		raw, err = docxText(data)
	case ExtText, ExtMarkdown:
		raw = string(data)
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}

	text := Normalize(raw)
	if strings.TrimSpace(text) == "" {
		return "", common.ErrEmptyDocument
	}
	return text, nil
}

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	extraBlank    = regexp.MustCompile(`\n{3,}`)
)

// Normalize applies NFKC (ligatures, non-breaking and full-width characters
// fold to their plain forms), unifies line endings and trims runs of blank
// lines down to one.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	s = norm.NFKC.String(s)
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = extraBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
