package document

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file types no parser handles.
var ErrUnsupported = errors.New("unsupported file type")

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

var parsers = map[string]func() Parser{
	".txt":      func() Parser { return &TextParser{} },
	".md":       func() Parser { return &MarkdownParser{} },
	".markdown": func() Parser { return &MarkdownParser{} },
	".csv":      func() Parser { return &CSVParser{} },
	".html":     func() Parser { return &HTMLParser{} },
	".htm":      func() Parser { return &HTMLParser{} },
	".pdf":      func() Parser { return &PDFParser{FallbackPdftotext: true} },
	".docx":     func() Parser { return &DOCXParser{} },
}

// ForFile returns the parser for a filename's extension.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mk, ok := parsers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return mk(), nil
}

// IsSupported reports whether a parser exists for the filename.
func IsSupported(filename string) bool {
	_, ok := parsers[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Parse picks a parser by extension and runs it.
func Parse(r io.Reader, filename string) (*Document, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
