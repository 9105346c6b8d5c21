package questiongen

import (
	"context"
	"strings"

	"github.com/abhisek/stepwise/internal/document"
	"github.com/abhisek/stepwise/internal/quiztree"
)

// FromDocuments generates seeds over several parsed documents read as one
// text in the given order. Reference passages are the documents' chunks.
func (g *SeedGenerator) FromDocuments(ctx context.Context, docs []*document.Document, chunking document.ChunkConfig, count int) ([]quiztree.Seed, error) {
	var (
		texts    []string
		passages []string
	)
	for _, d := range docs {
		if t := strings.TrimSpace(d.Text()); t != "" {
			texts = append(texts, t)
		}
		passages = append(passages, document.ChunkTexts(document.ChunkDocument(d, chunking))...)
	}
	g.log.Debug("generating seeds", "documents", len(docs), "passages", len(passages), "count", count)
	return g.Generate(ctx, strings.Join(texts, "\n\n"), passages, count)
}
