// Package evaluator grades a learner's free-text answer against a reference
// passage. The grading itself is delegated to an LLM; this package owns the
// prompts, the keyword classification of the reply and the feedback
// rewriting.
package evaluator

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/stepwise/internal/llm"
)

// MaxRefinementAttempts is how many times a refinement question is graded
// before the learner is moved on.
const MaxRefinementAttempts = 2

// ErrAttemptsExhausted is returned when a refinement question has already
// been graded MaxRefinementAttempts times.
var ErrAttemptsExhausted = errors.New("refinement attempts exhausted")

// Config holds the generation parameters for grading calls.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.2,
	}
}

// Input is the material a single grading call sees.
type Input struct {
	ReferenceText string
	Question      string
	Answer        string
}

// Result is a graded answer.
type Result struct {
	Category Category
	Feedback string
	// Rule names the keyword that produced Category, empty when the reply
	// matched nothing and fell back to incorrect.
	Rule string
	// Attempt is 1 for a first grading and 2 for a refinement retry.
	Attempt int
}

// Evaluator grades answers through an LLM provider.
type Evaluator struct {
	provider llm.Provider
	cfg      Config
	rules    []Rule
}

// New creates an Evaluator using DefaultRules.
func New(provider llm.Provider, cfg Config) *Evaluator {
	return &Evaluator{provider: provider, cfg: cfg, rules: DefaultRules()}
}

// EvaluateFirst grades an answer to a basic question.
func (e *Evaluator) EvaluateFirst(ctx context.Context, in Input) (*Result, error) {
	reply, err := e.grade(llm.WithPurpose(ctx, "grade"), gradeSystemPrompt, in, "")
	if err != nil {
		return nil, err
	}
	cat, rule := Classify(e.rules, reply)
	return &Result{
		Category: cat,
		Feedback: PostProcess(cat, reply, true),
		Rule:     rule,
		Attempt:  1,
	}, nil
}

// EvaluateRefinement grades an answer to a refinement question. prior holds
// the feedback already given for this question: none on the first attempt,
// one entry on the second. The second attempt shows the grader that earlier
// feedback and asks it to be lenient.
func (e *Evaluator) EvaluateRefinement(ctx context.Context, in Input, prior []string) (*Result, error) {
	if len(prior) >= MaxRefinementAttempts {
		return nil, fmt.Errorf("%w: %d prior attempts", ErrAttemptsExhausted, len(prior))
	}

	var (
		reply string
		err   error
	)
	if len(prior) == 0 {
		reply, err = e.grade(llm.WithPurpose(ctx, "grade"), gradeSystemPrompt, in, "")
	} else {
		reply, err = e.grade(llm.WithPurpose(ctx, "grade-retry"), gradeRetrySystemPrompt, in, prior[0])
	}
	if err != nil {
		return nil, err
	}

	cat, rule := Classify(e.rules, reply)
	return &Result{
		Category: cat,
		Feedback: PostProcess(cat, reply, false),
		Rule:     rule,
		Attempt:  len(prior) + 1,
	}, nil
}

func (e *Evaluator) grade(ctx context.Context, system string, in Input, previousFeedback string) (string, error) {
	userMsg, err := buildGradeMessage(in, previousFeedback)
	if err != nil {
		return "", fmt.Errorf("build grading prompt: %w", err)
	}
	reply, err := llm.Complete(ctx, e.provider, system, userMsg, e.cfg.MaxTokens, e.cfg.Temperature)
	if err != nil {
		return "", fmt.Errorf("grade answer: %w", err)
	}
	return reply, nil
}
