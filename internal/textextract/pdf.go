package textextract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var contentPage = regexp.MustCompile(`_Content_page_(\d+)\.txt$`)

type pageContent struct {
	path string
	page int
}

// pdfText unpacks every page content stream with pdfcpu and decodes the
// text-showing operators in page order.
func (e *Extractor) pdfText(ctx context.Context, data []byte) (string, error) {
	workDir, err := os.MkdirTemp(e.TempDir, "tranche-pdf-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	inFile := filepath.Join(workDir, "document.pdf")
	if err := os.WriteFile(inFile, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write temp PDF file: %w", err)
	}

	outDir := filepath.Join(workDir, "content")
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create content dir: %w", err)
	}

	conf := pdfmodel.NewDefaultConfiguration()
	if err := api.ExtractContentFile(inFile, outDir, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	pages, err := contentFiles(outDir)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		stream, err := os.ReadFile(p.path) //nolint:gosec // file written by pdfcpu into our temp dir
		if err != nil {
			return "", fmt.Errorf("failed to read page %d content: %w", p.page, err)
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(ContentText(stream))
	}

	return text.String(), nil
}

// contentFiles lists pdfcpu's per-page content files ordered by page number.
func contentFiles(dir string) ([]pageContent, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content dir: %w", err)
	}

	var pages []pageContent
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := contentPage.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		pages = append(pages, pageContent{path: filepath.Join(dir, entry.Name()), page: n})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].page < pages[j].page })
	return pages, nil
}
