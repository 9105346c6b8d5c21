package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/stepwise/internal/document"
	"github.com/abhisek/stepwise/internal/questiongen"
	"github.com/abhisek/stepwise/internal/quiztree"
)

// readSeedsFile loads a JSON array of seed questions.
func readSeedsFile(path string) ([]quiztree.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seeds: %w", err)
	}
	var seeds []quiztree.Seed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("decode seeds %s: %w", filepath.Base(path), err)
	}
	return seeds, nil
}

// parseDocuments parses every file with the parser its extension selects.
// Unsupported extensions are rejected before any file is read.
func parseDocuments(paths []string) ([]*document.Document, error) {
	for _, p := range paths {
		if !document.IsSupported(p) {
			return nil, fmt.Errorf("unsupported file type: %s", filepath.Base(p))
		}
	}
	docs := make([]*document.Document, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", p, err)
		}
		doc, err := document.Parse(f, filepath.Base(p))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// seedsFromFiles generates count seed questions from documents. A single
// .json argument is read as a ready-made seed list instead.
func seedsFromFiles(ctx context.Context, gen *questiongen.SeedGenerator, paths []string, count int) ([]quiztree.Seed, error) {
	if len(paths) == 1 && strings.EqualFold(filepath.Ext(paths[0]), ".json") {
		return readSeedsFile(paths[0])
	}
	docs, err := parseDocuments(paths)
	if err != nil {
		return nil, err
	}
	return gen.FromDocuments(ctx, docs, document.DefaultChunkConfig(), count)
}
