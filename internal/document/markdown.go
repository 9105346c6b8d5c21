package document

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser parses Markdown with goldmark, nesting sections by heading
// level.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	root := goldmark.New().Parser().Parse(text.NewReader(src))

	o := newOutline()
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			o.heading(h.Level, string(h.Text(src)))
			continue
		}
		o.text(blockText(n, src))
	}

	return &Document{Title: baseTitle(filename), Sections: o.sections()}, nil
}

// blockText returns the text of a node's inline descendants, or its raw
// lines for leaf blocks such as code.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if !n.HasChildren() {
		if n.Type() == ast.TypeBlock {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		buf.WriteString(blockText(c, src))
		if c.Type() == ast.TypeBlock {
			buf.WriteByte('\n')
		}
	}
	return strings.TrimSpace(buf.String())
}
