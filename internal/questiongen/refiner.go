package questiongen

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/abhisek/stepwise/internal/llm"
)

// RefinementInput is what the synthesizer knows about the failed answer.
type RefinementInput struct {
	ReferenceText string
	Question      string
	Answer        string
	Feedback      string
	// Context optionally carries earlier answers in the same branch.
	Context string
}

// Refiner synthesizes follow-up questions for an unsatisfactory answer.
type Refiner struct {
	provider llm.Provider
	cfg      Config
	log      *slog.Logger
}

// NewRefiner creates a Refiner. A nil logger uses slog.Default().
func NewRefiner(provider llm.Provider, cfg Config, log *slog.Logger) *Refiner {
	if log == nil {
		log = slog.Default()
	}
	return &Refiner{provider: provider, cfg: cfg, log: log}
}

// Synthesize asks the LLM for follow-up questions and returns the accepted
// question texts in order. An empty slice is a valid outcome.
func (r *Refiner) Synthesize(ctx context.Context, in RefinementInput) ([]string, error) {
	ctx = llm.WithPurpose(ctx, "refinement-gen")

	reply, err := llm.Complete(ctx, r.provider, refineSystemPrompt, buildRefineUserMessage(in), r.cfg.MaxTokens, r.cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("synthesize refinements: %w", err)
	}

	var out []string
	for _, c := range dedupe(ParseLines(reply)) {
		if verr := runValidators(r.cfg.Validators, &c); verr != nil {
			r.log.Debug("refinement dropped", "question", c.Question, "reason", verr.Error())
			continue
		}
		out = append(out, c.Question)
		if r.cfg.MaxRefinements > 0 && len(out) == r.cfg.MaxRefinements {
			break
		}
	}
	return out, nil
}

var listMarker = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)

// ParseLines splits "question | answer" lines. Blank lines are skipped and
// a line without a separator is all question. Leading list markers are
// removed.
func ParseLines(text string) []Candidate {
	var out []Candidate
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = listMarker.ReplaceAllString(line, "")
		q, a, _ := strings.Cut(line, "|")
		out = append(out, Candidate{
			Question: strings.TrimSpace(q),
			Answer:   strings.TrimSpace(a),
		})
	}
	return out
}
