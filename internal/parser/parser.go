// Package parser extracts text from local files for upload as document
// content. Supported formats are plain text, Markdown and DOCX; any other
// file is accepted when it is valid UTF-8.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/contextiq/contextiq-cli/internal/utils"
)

// Extract is the text pulled out of one file.
type Extract struct {
	// Title comes from the file's own metadata; empty when it has none.
	Title string
	Text  string
}

// Parser extracts text from a document format.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte) (Extract, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns the extracted text.
// Files no parser claims are accepted as plain text when they are valid UTF-8.
func ParseFile(path string) (Extract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Extract{}, fmt.Errorf("read file: %w", err)
	}
	for _, p := range registry {
		if p.CanParse(path) {
			ex, err := p.Parse(data)
			if err != nil {
				return Extract{}, fmt.Errorf("%s: %w", path, err)
			}
			return ex, nil
		}
	}
	if !utf8.Valid(data) {
		return Extract{}, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	return Extract{Text: normalizeText(string(data))}, nil
}

// EstimateTokens delegates to utils.CountTokens.
func EstimateTokens(text string) int {
	return utils.CountTokens(text)
}

// normalizeText drops a byte-order mark, unifies line endings and collapses
// runs of blank lines.
func normalizeText(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}

func init() {
	Register(txtParser{})
	Register(markdownParser{})
	Register(docxParser{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported document format")
