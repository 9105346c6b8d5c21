package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/stepwise/internal/evaluator"
	"github.com/abhisek/stepwise/internal/llm"
	"github.com/abhisek/stepwise/internal/questiongen"
	"github.com/abhisek/stepwise/internal/ranking"
	"github.com/abhisek/stepwise/internal/session"
	"github.com/abhisek/stepwise/internal/store"
	"github.com/abhisek/stepwise/internal/tutor"
	"github.com/spf13/cobra"
)

// engine bundles the collaborators every quiz front end needs.
type engine struct {
	store    *store.Store
	provider llm.Provider
	seeds    *questiongen.SeedGenerator
	tutor    *tutor.Service
}

// openEngine opens the event store and builds the model-backed collaborators.
// The caller closes the returned store.
func openEngine(ctx context.Context, cmd *cobra.Command, log *slog.Logger) (*engine, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo(), log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}

	return &engine{
		store:    st,
		provider: provider,
		seeds:    questiongen.NewSeedGenerator(provider, questiongen.DefaultConfig(), log),
		tutor:    tutor.NewService(provider, tutor.DefaultConfig()),
	}, nil
}

// orchestrator builds a session orchestrator over sessions. reporter may be nil.
func (e *engine) orchestrator(sessions session.Store, reporter ranking.Reporter, rewrite bool, log *slog.Logger) *session.Orchestrator {
	return session.New(session.Options{
		Store:          sessions,
		Evaluator:      evaluator.New(e.provider, evaluator.DefaultConfig()),
		Refiner:        questiongen.NewRefiner(e.provider, questiongen.DefaultConfig(), log),
		Tutor:          e.tutor,
		Reporter:       reporter,
		Events:         e.store.EventRepo(),
		Logger:         log,
		RewriteAnswers: rewrite,
	})
}

func (e *engine) Close() error {
	return e.store.Close()
}
