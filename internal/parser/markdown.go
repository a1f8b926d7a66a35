package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type markdownParser struct{}

func (markdownParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")
}

type frontMatter struct {
	Title string `yaml:"title"`
}

// Parse strips YAML front matter and takes the title from it, falling back
// to the first level-one heading.
func (markdownParser) Parse(content []byte) (Extract, error) {
	text := normalizeText(string(content))

	var fm frontMatter
	if rest, ok := strings.CutPrefix(text, "---\n"); ok {
		header, body, found := strings.Cut(rest, "\n---")
		if found {
			if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
				return Extract{}, fmt.Errorf("front matter: %w", err)
			}
			text = strings.TrimSpace(body)
		}
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		for _, line := range strings.Split(text, "\n") {
			if h, ok := strings.CutPrefix(line, "# "); ok {
				title = strings.TrimSpace(h)
				break
			}
		}
	}
	return Extract{Title: title, Text: text}, nil
}
