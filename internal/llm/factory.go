package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/stepwise/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with timeout, retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → timeout → retry → logging → base
	logged := WithLogging(base, eventRepo, log)
	retried := WithRetry(logged, cfg.Retry, log)
	if cfg.Timeout > 0 {
		return WithTimeout(retried, cfg.Timeout), nil
	}
	return retried, nil
}

// NewProviderFromEnv resolves configuration from STEPWISE_* variables,
// falling back to the vendors' standard key variables, validates it and
// builds the provider.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, log *slog.Logger) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	return NewProvider(ctx, cfg, eventRepo, log)
}
