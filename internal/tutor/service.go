// Package tutor produces the explanatory text around a quiz: hints for a
// struggling learner, cleaned-up answers and the end-of-session summary.
package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/stepwise/internal/llm"
)

// HintInput is what the hint generator sees.
type HintInput struct {
	Question      string
	Answer        string
	ReferenceText string
	// Context optionally carries the surrounding questions and answers.
	Context string
}

// Service generates tutoring text through an LLM provider.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a tutoring service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Hint re-explains the reference material in light of the learner's answer.
func (s *Service) Hint(ctx context.Context, in HintInput) (string, error) {
	ctx = llm.WithPurpose(ctx, "hint")
	hint, err := llm.Complete(ctx, s.provider, hintSystemPrompt, buildHintUserMessage(in), s.cfg.HintMaxTokens, s.cfg.Temperature)
	if err != nil {
		return "", fmt.Errorf("hint generation: %w", err)
	}
	return hint, nil
}

// RewriteAnswer fixes the wording of an answer without changing what it
// says. A blank answer is returned as is without calling the provider.
func (s *Service) RewriteAnswer(ctx context.Context, question, answer string) (string, error) {
	if strings.TrimSpace(answer) == "" {
		return answer, nil
	}
	ctx = llm.WithPurpose(ctx, "answer-rewrite")
	out, err := llm.Complete(ctx, s.provider, rewriteSystemPrompt, buildRewriteUserMessage(question, answer), s.cfg.RewriteMaxTokens, 0)
	if err != nil {
		return "", fmt.Errorf("rewrite answer: %w", err)
	}
	return out, nil
}

// Summarize evaluates a whole session from its transcript.
func (s *Service) Summarize(ctx context.Context, transcript string) (string, error) {
	ctx = llm.WithPurpose(ctx, "session-summary")
	out, err := llm.Complete(ctx, s.provider, summarySystemPrompt, buildSummaryUserMessage(transcript), s.cfg.SummaryMaxTokens, s.cfg.Temperature)
	if err != nil {
		return "", fmt.Errorf("summarize session: %w", err)
	}
	return stripCodeFence(out), nil
}

// stripCodeFence removes a ```html ... ``` wrapper some models add despite
// being told not to.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
