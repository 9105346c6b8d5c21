package document

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// TextParser treats blank-line separated paragraphs as sections.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &Document{Title: baseTitle(filename)}
	var para []string
	emit := func() {
		if len(para) > 0 {
			doc.Sections = append(doc.Sections, &Section{Text: strings.Join(para, "\n")})
			para = para[:0]
		}
	}
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			emit()
			continue
		}
		para = append(para, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	emit()
	return doc, nil
}

// csvBatchRows is how many data rows go into one section.
const csvBatchRows = 20

// CSVParser renders rows as "header: value" lines, in batches.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: baseTitle(filename)}
	if len(records) < 2 {
		return doc, nil
	}

	headers, rows := records[0], records[1:]
	for start := 0; start < len(rows); start += csvBatchRows {
		end := min(start+csvBatchRows, len(rows))
		var b strings.Builder
		for _, row := range rows[start:end] {
			cells := make([]string, len(row))
			for j, cell := range row {
				if j < len(headers) {
					cells[j] = headers[j] + ": " + cell
				} else {
					cells[j] = cell
				}
			}
			b.WriteString(strings.Join(cells, ", "))
			b.WriteByte('\n')
		}
		doc.Sections = append(doc.Sections, &Section{
			Title: fmt.Sprintf("Rows %d-%d", start+2, end+1),
			Text:  strings.TrimSpace(b.String()),
		})
	}
	return doc, nil
}
