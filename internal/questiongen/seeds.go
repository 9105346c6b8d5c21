package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/stepwise/internal/llm"
	"github.com/abhisek/stepwise/internal/quiztree"
)

// SeedGenerator turns source text into seed questions, each grounded in the
// passage that best supports it.
type SeedGenerator struct {
	provider llm.Provider
	cfg      Config
	log      *slog.Logger
}

// NewSeedGenerator creates a SeedGenerator. A nil logger uses slog.Default().
func NewSeedGenerator(provider llm.Provider, cfg Config, log *slog.Logger) *SeedGenerator {
	if log == nil {
		log = slog.Default()
	}
	return &SeedGenerator{provider: provider, cfg: cfg, log: log}
}

type seedOutput struct {
	Questions []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"questions"`
}

// Generate asks for count questions over the whole text, then attaches to
// each the passage that best matches its question and answer. With no
// passages the whole text is the reference. It may return fewer than count
// seeds; blank text yields none.
func (g *SeedGenerator) Generate(ctx context.Context, text string, passages []string, count int) ([]quiztree.Seed, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: question count must be positive, got %d", quiztree.ErrInvalidArgument, count)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	ctx = llm.WithPurpose(ctx, "seed-gen")

	source := text
	if g.cfg.MaxSourceRunes > 0 {
		if r := []rune(source); len(r) > g.cfg.MaxSourceRunes {
			source = string(r[:g.cfg.MaxSourceRunes])
		}
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: buildSeedSystemPrompt(count),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSeedUserMessage(source, count)},
		},
		Schema:      SeedSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate seed questions: %w", err)
	}

	var raw seedOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("parse seed questions: %w", err)}
	}

	cands := make([]Candidate, 0, len(raw.Questions))
	for _, q := range raw.Questions {
		cands = append(cands, Candidate{
			Question: strings.TrimSpace(q.Question),
			Answer:   strings.TrimSpace(q.Answer),
		})
	}

	ix := NewIndex(passages)
	var seeds []quiztree.Seed
	for _, c := range dedupe(cands) {
		if verr := runValidators(g.cfg.SeedValidators, &c); verr != nil {
			g.log.Debug("seed question dropped", "question", c.Question, "reason", verr.Error())
			continue
		}
		ref := text
		if best := ix.Best(c.Question + " " + c.Answer); best >= 0 {
			ref = passages[best]
		}
		seeds = append(seeds, quiztree.Seed{ReferenceText: ref, Question: c.Question, Answer: c.Answer})
		if len(seeds) == count {
			break
		}
	}
	return seeds, nil
}
