package report

import (
	"fmt"
	"os"
	"strings"
)

// PageSource supplies the extracted text of a report, one string per page.
// The binary document decode happens behind this interface; the parser only
// ever sees text lines.
type PageSource interface {
	// Pages returns the per-page text in document order. A decode failure
	// is returned as-is and wrapped by the parser.
	Pages() ([]string, error)
}

// TextFileSource reads report text from a plain-text file, treating form
// feeds as page boundaries. This is the convention used by pdftotext and
// most PDF text extractors, so their output can be audited directly.
type TextFileSource struct {
	Path string
}

// Pages reads the file and splits it on form-feed characters.
func (s *TextFileSource) Pages() ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading report text %s: %w", s.Path, err)
	}
	return strings.Split(string(data), "\f"), nil
}

// PageSlice adapts already-extracted page text to the PageSource interface.
type PageSlice []string

// Pages returns the slice unchanged.
func (s PageSlice) Pages() ([]string, error) {
	return []string(s), nil
}
