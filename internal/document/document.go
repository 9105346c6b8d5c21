// Package document turns uploaded study material into plain text sections
// and retrieval-sized chunks.
package document

import "strings"

// Document is a parsed source file.
type Document struct {
	Title    string
	Sections []*Section
}

// Section is a heading and its text, with nested subsections.
type Section struct {
	Title    string
	Text     string
	Page     int // 0 when the format has no pages
	Children []*Section
}

// Chunk is a sized piece of text with the headings it sits under.
type Chunk struct {
	Text       string
	Index      int
	Breadcrumb []string
	Page       int
}

// Text flattens the document into one string, headings included, in
// reading order.
func (d *Document) Text() string {
	var b strings.Builder
	var walk func(s *Section)
	walk = func(s *Section) {
		if s.Title != "" {
			writeBlock(&b, s.Title)
		}
		if s.Text != "" {
			writeBlock(&b, s.Text)
		}
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, s := range d.Sections {
		walk(s)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, s string) {
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(s)
}

// outline builds a section tree from a flat stream of headings and text
// blocks, nesting each heading under the nearest shallower one.
type outline struct {
	root  *Section
	stack []outlineEntry
	buf   strings.Builder
}

type outlineEntry struct {
	section *Section
	level   int
}

func newOutline() *outline {
	root := &Section{}
	return &outline{root: root, stack: []outlineEntry{{section: root}}}
}

func (o *outline) heading(level int, title string) {
	o.flush()
	s := &Section{Title: title}
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].section
	parent.Children = append(parent.Children, s)
	o.stack = append(o.stack, outlineEntry{section: s, level: level})
}

func (o *outline) text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if o.buf.Len() > 0 {
		o.buf.WriteString("\n\n")
	}
	o.buf.WriteString(t)
}

func (o *outline) flush() {
	t := strings.TrimSpace(o.buf.String())
	o.buf.Reset()
	if t == "" {
		return
	}
	top := o.stack[len(o.stack)-1].section
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// sections finishes the outline. Text before the first heading becomes a
// leading untitled section.
func (o *outline) sections() []*Section {
	o.flush()
	out := o.root.Children
	if o.root.Text != "" {
		out = append([]*Section{{Text: o.root.Text}}, out...)
	}
	return out
}
