package parser

import (
	"strings"
	"unicode/utf8"
)

type txtParser struct{}

func (txtParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".txt")
}

func (txtParser) Parse(content []byte) (Extract, error) {
	if !utf8.Valid(content) {
		return Extract{}, ErrUnsupported
	}
	return Extract{Text: normalizeText(string(content))}, nil
}
