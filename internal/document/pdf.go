package document

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts page text with the Go PDF reader, falling back to
// pdftotext when enabled and the reader fails.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	path, cleanup, err := spool(r, "stepwise-*.pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pages, err := readPDFPages(path)
	if err != nil && p.FallbackPdftotext {
		pages, err = runPdftotext(path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	doc := &Document{Title: baseTitle(filename)}
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		doc.Sections = append(doc.Sections, &Section{Text: page, Page: i + 1})
	}
	return doc, nil
}

func readPDFPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func runPdftotext(path string) ([]string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return strings.Split(string(out), "\f"), nil
}

// spool copies r into a temp file for libraries that need random access.
func spool(r io.Reader, pattern string) (string, func(), error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
