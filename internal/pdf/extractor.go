// Package pdf extracts plain text from PDF files.
package pdf

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor reads PDF files page by page. Pages that cannot be decoded are
// skipped so one bad page does not lose the rest of the document.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor logging page-level skips to logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Text returns the concatenated text of all readable pages, separated by
// newlines and trimmed. An empty result means the document had no
// extractable text; callers treat that as a skippable document, not an
// error.
func (e *Extractor) Text(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		pageText, err := e.pageText(reader, pageNum)
		if err != nil {
			e.logger.Warn("skipping unreadable page", "path", path, "page", pageNum, "error", err)
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			e.logger.Warn("page has no extractable text", "path", path, "page", pageNum)
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), nil
}

// pageText extracts a single page. The underlying reader panics on some
// malformed content streams; those panics are converted to per-page errors.
func (e *Extractor) pageText(reader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page decode panic: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d is null", pageNum)
	}
	return page.GetPlainText(nil)
}
