package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Text returns the response content as plain text. Providers hand back raw
// text for schema-less requests; a JSON string literal is unquoted.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	raw := strings.TrimSpace(string(r.Content))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return raw
}

// Complete runs a single-turn, schema-less request and returns the text
// answer. An empty answer is reported as *ErrInvalidResponse so callers can
// treat it like any other unusable output.
func Complete(ctx context.Context, p Provider, system, user string, maxTokens int, temperature float64) (string, error) {
	resp, err := p.Generate(ctx, Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", &ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("empty text response for %s", PurposeFrom(ctx)),
		}
	}
	return text, nil
}
