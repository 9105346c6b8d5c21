package document

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser handles HTML pages, using h1-h6 for structure and skipping
// page chrome.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Document{Title: baseTitle(filename)}
	if t := findElement(root, "title"); t != nil {
		if title := nodeText(t); title != "" {
			doc.Title = title
		}
	}

	o := newOutline()
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := htmlHeadingLevel(n.Data); level > 0 {
				o.heading(level, nodeText(n))
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote", "pre":
				o.text(nodeText(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if body := findElement(root, "body"); body != nil {
		walk(body)
	} else {
		walk(root)
	}

	doc.Sections = o.sections()
	return doc, nil
}

func htmlHeadingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
