package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider speaks OpenRouter's OpenAI-compatible API, so model
// IDs are the router's "vendor/model" names and are never remapped.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
		Headers: openRouterHeaders(cfg),
	})
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

func openRouterHeaders(cfg OpenRouterConfig) map[string]string {
	h := map[string]string{}
	if cfg.AppTitle != "" {
		h["X-Title"] = cfg.AppTitle
	}
	if cfg.SiteURL != "" {
		h["HTTP-Referer"] = cfg.SiteURL
	}
	return h
}
