package questiongen

import (
	"math"
	"strings"
	"unicode"
)

// BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "does": true, "do": true, "for": true, "from": true,
	"how": true, "in": true, "is": true, "it": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "this": true, "to": true, "was": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"why": true, "with": true,
}

// Index ranks passages against a query with BM25 over lowercase word terms.
type Index struct {
	passages []string
	tf       []map[string]int
	lengths  []int
	df       map[string]int
	avgLen   float64
}

// NewIndex tokenizes and indexes the passages.
func NewIndex(passages []string) *Index {
	ix := &Index{
		passages: passages,
		tf:       make([]map[string]int, len(passages)),
		lengths:  make([]int, len(passages)),
		df:       make(map[string]int),
	}
	total := 0
	for i, p := range passages {
		terms := tokenize(p)
		counts := make(map[string]int, len(terms))
		for _, t := range terms {
			counts[t]++
		}
		for t := range counts {
			ix.df[t]++
		}
		ix.tf[i] = counts
		ix.lengths[i] = len(terms)
		total += len(terms)
	}
	if len(passages) > 0 {
		ix.avgLen = float64(total) / float64(len(passages))
	}
	return ix
}

// Len returns the number of indexed passages.
func (ix *Index) Len() int {
	return len(ix.passages)
}

// Best returns the index of the highest scoring passage for query, or -1
// when there are no passages. Ties go to the earlier passage, so a query
// sharing no terms with any passage maps to the first one.
func (ix *Index) Best(query string) int {
	if len(ix.passages) == 0 {
		return -1
	}
	best, bestScore := 0, -1.0
	for i := range ix.passages {
		s := ix.Score(i, query)
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// Score computes the BM25 score of passage i for query.
func (ix *Index) Score(i int, query string) float64 {
	n := float64(len(ix.passages))
	seen := make(map[string]bool)
	score := 0.0
	for _, t := range tokenize(query) {
		if seen[t] {
			continue
		}
		seen[t] = true
		tf := float64(ix.tf[i][t])
		if tf == 0 {
			continue
		}
		df := float64(ix.df[t])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		norm := 1 - bm25B
		if ix.avgLen > 0 {
			norm += bm25B * float64(ix.lengths[i]) / ix.avgLen
		}
		score += idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
	}
	return score
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
