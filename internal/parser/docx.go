package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type docxParser struct{}

func (docxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".docx")
}

// Parse walks word/document.xml and keeps paragraph, tab and line breaks.
// The title is read from docProps/core.xml when present.
func (docxParser) Parse(content []byte) (Extract, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Extract{}, fmt.Errorf("open docx: %w", err)
	}
	var ex Extract
	var body bool
	for _, f := range zr.File {
		switch f.Name {
		case "word/document.xml":
			text, err := readZipEntry(f, docxBodyText)
			if err != nil {
				return Extract{}, fmt.Errorf("read document.xml: %w", err)
			}
			ex.Text = normalizeText(text)
			body = true
		case "docProps/core.xml":
			// A broken properties part only costs the title.
			ex.Title, _ = readZipEntry(f, docxTitle)
		}
	}
	if !body {
		return Extract{}, errors.New("document.xml not found in DOCX")
	}
	return ex, nil
}

func readZipEntry(f *zip.File, read func(io.Reader) (string, error)) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return read(rc)
}

func docxBodyText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}

func docxTitle(r io.Reader) (string, error) {
	var props struct {
		Title string `xml:"title"`
	}
	if err := xml.NewDecoder(r).Decode(&props); err != nil {
		return "", err
	}
	return strings.TrimSpace(props.Title), nil
}
