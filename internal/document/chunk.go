package document

import "strings"

// tokensPerWord approximates English tokenization: about 1.33 tokens per
// word.
const tokensPerWord = 1.33

// ChunkConfig controls chunk sizing, in estimated tokens.
type ChunkConfig struct {
	Size     int
	Overlap  int
	MinChunk int
}

// DefaultChunkConfig returns small retrieval-oriented chunks.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:     128,
		Overlap:  32,
		MinChunk: 1,
	}
}

func (c ChunkConfig) normalized() ChunkConfig {
	def := DefaultChunkConfig()
	if c.Size <= 0 {
		c.Size = def.Size
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		c.Overlap = min(def.Overlap, c.Size/4)
	}
	if c.MinChunk <= 0 {
		c.MinChunk = def.MinChunk
	}
	return c
}

// EstimateTokens gives a rough token count from the word count.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return max(1, int(float64(words)*tokensPerWord))
}

// ChunkDocument walks the section tree and splits each section's text into
// chunks of about cfg.Size tokens, carrying the heading path along.
func ChunkDocument(doc *Document, cfg ChunkConfig) []Chunk {
	cfg = cfg.normalized()
	var chunks []Chunk
	var walk func(s *Section, crumbs []string)
	walk = func(s *Section, crumbs []string) {
		if s.Title != "" {
			crumbs = append(crumbs[:len(crumbs):len(crumbs)], s.Title)
		}
		for _, part := range splitText(s.Text, cfg) {
			if EstimateTokens(part) < cfg.MinChunk {
				continue
			}
			chunks = append(chunks, Chunk{
				Text:       part,
				Index:      len(chunks),
				Breadcrumb: crumbs,
				Page:       s.Page,
			})
		}
		for _, c := range s.Children {
			walk(c, crumbs)
		}
	}
	for _, s := range doc.Sections {
		walk(s, nil)
	}
	return chunks
}

// ChunkTexts returns just the text of each chunk.
func ChunkTexts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// splitText packs paragraphs into chunks, splitting oversized paragraphs by
// sentence. Each new chunk starts with the tail of the previous one.
func splitText(text string, cfg ChunkConfig) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if EstimateTokens(text) <= cfg.Size {
		return []string{text}
	}

	var pieces []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if EstimateTokens(para) > cfg.Size {
			pieces = append(pieces, splitSentences(para)...)
		} else {
			pieces = append(pieces, para)
		}
	}
	return pack(pieces, cfg)
}

// pack greedily joins pieces up to the size limit. A single piece larger
// than the limit is cut by words.
func pack(pieces []string, cfg ChunkConfig) []string {
	var out []string
	var cur []string
	curTokens := 0
	fresh := false // cur holds more than the carried-over overlap

	add := func(p string, tokens int) {
		if fresh && curTokens+tokens > cfg.Size {
			chunk := strings.Join(cur, " ")
			out = append(out, chunk)
			cur, curTokens = cur[:0], 0
			if tail := overlapTail(chunk, cfg.Overlap); tail != "" {
				cur = append(cur, tail)
				curTokens = EstimateTokens(tail)
			}
		}
		cur = append(cur, p)
		curTokens += tokens
		fresh = true
	}

	for _, p := range pieces {
		if EstimateTokens(p) > cfg.Size {
			for _, w := range splitWords(p, cfg.Size) {
				add(w, EstimateTokens(w))
			}
			continue
		}
		add(p, EstimateTokens(p))
	}
	if fresh {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// splitWords cuts text into runs of at most maxTokens estimated tokens.
func splitWords(text string, maxTokens int) []string {
	words := strings.Fields(text)
	per := max(1, int(float64(maxTokens)/tokensPerWord))
	var out []string
	for i := 0; i < len(words); i += per {
		out = append(out, strings.Join(words[i:min(i+per, len(words))], " "))
	}
	return out
}

// overlapTail returns roughly the last n tokens of text.
func overlapTail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	keep := int(float64(n) / tokensPerWord)
	if keep <= 0 || len(words) <= keep {
		return ""
	}
	return strings.Join(words[len(words)-keep:], " ")
}
