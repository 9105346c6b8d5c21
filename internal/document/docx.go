package document

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles Word documents, using paragraph heading styles for
// structure.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	path, cleanup, err := spool(r, "stepwise-*.docx")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open temp file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat temp file: %w", err)
	}

	d, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	o := newOutline()
	for _, item := range d.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if level := headingStyleLevel(para); level > 0 {
			o.heading(level, text)
		} else {
			o.text(text)
		}
	}

	return &Document{Title: baseTitle(filename), Sections: o.sections()}, nil
}

// headingStyleLevel maps "Heading1" / "heading 1" style names to 1..6.
func headingStyleLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

func paragraphText(para *docx.Paragraph) string {
	var b strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				b.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
