package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// openaiModels maps friendly names to OpenAI model IDs.
var openaiModels = map[string]string{
	"gpt-4o":       "gpt-4o",
	"gpt-4o-mini":  "gpt-4o-mini",
	"gpt-4.1-mini": "gpt-4.1-mini",
}

// OpenAIProvider implements Provider using the OpenAI SDK.
// It also supports OpenRouter and other OpenAI-compatible APIs via BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	return newOpenAIProviderRaw(cfg)
}

// newOpenAIProviderRaw builds the client without key checks so wrappers
// for compatible APIs can apply their own.
func newOpenAIProviderRaw(cfg OpenAIConfig) (*OpenAIProvider, error) {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if len(cfg.Headers) > 0 {
		config.HTTPClient = &http.Client{
			Transport: &headerTransport{base: http.DefaultTransport, headers: cfg.Headers},
		}
	}

	client := openai.NewClientWithConfig(config)
	model := resolveModel(cfg.Model, openaiModels)

	return &OpenAIProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	messages := buildOpenAIMessages(req)

	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            messages,
		MaxCompletionTokens: req.maxTokens(),
		Temperature:         float32(req.Temperature),
	}

	// Use JSON schema response format when schema is provided.
	if req.Schema != nil {
		schemaBytes, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}

		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(schemaBytes),
				Strict: true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("no choices in OpenAI response"),
		}
	}

	content := json.RawMessage(resp.Choices[0].Message.Content)

	// Validate against schema if provided.
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: mapOpenAIStopReason(resp.Choices[0].FinishReason),
	}, nil
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

func buildOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage

	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	return messages
}

func mapOpenAIStopReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonStop:
		return "end"
	case openai.FinishReasonLength:
		return "max_tokens"
	default:
		return "end"
	}
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, nil, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, nil, err)
	}
	return &ErrProviderUnavailable{Err: err}
}

// headerTransport sets fixed headers on outgoing requests.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
