package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestMockProvider_FIFOAndRecording(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"questions":[]}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockText("Partially correct"),
	)
	if mock.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", mock.Pending())
	}

	req := Request{System: "grader", Messages: []Message{{Role: RoleUser, Content: "Question: ..."}}}
	first, err := mock.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if string(first.Content) != `{"questions":[]}` || first.Usage.InputTokens != 10 || first.StopReason != "end" {
		t.Errorf("first = %+v", first)
	}

	second, err := mock.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Text() != "Partially correct" {
		t.Errorf("second text = %q", second.Text())
	}
	if mock.CallCount() != 2 || mock.Calls[0].System != "grader" {
		t.Errorf("calls = %+v", mock.Calls)
	}
	if mock.Pending() != 0 {
		t.Errorf("pending = %d, want 0", mock.Pending())
	}
}

func TestMockProvider_EmptyQueueNamesPurpose(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(WithPurpose(context.Background(), "hint"), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %T, want *ErrProviderUnavailable", err)
	}
	if !strings.Contains(err.Error(), `"hint"`) {
		t.Errorf("err = %q, want purpose in message", err)
	}
}

func TestStatusError(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "12")
	cause := errors.New("vendor said no")

	tests := []struct {
		name      string
		status    int
		header    http.Header
		transient bool
		check     func(error) bool
	}{
		{"429 with retry-after", 429, header, true, func(err error) bool {
			after, ok := RetryAfter(err)
			return ok && after == 12*time.Second
		}},
		{"429 without header", 429, nil, true, func(err error) bool {
			after, ok := RetryAfter(err)
			return ok && after == 0
		}},
		{"401 rejected", 401, nil, false, func(err error) bool {
			var rej *ErrRequestRejected
			return errors.As(err, &rej) && rej.Status == 401
		}},
		{"503 unavailable", 503, nil, true, func(err error) bool {
			var unavail *ErrProviderUnavailable
			return errors.As(err, &unavail)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := statusError(tt.status, tt.header, cause)
			if !errors.Is(err, cause) {
				t.Errorf("%v does not wrap the vendor error", err)
			}
			if !tt.check(err) {
				t.Errorf("unexpected classification: %T %v", err, err)
			}
			if Transient(err) != tt.transient {
				t.Errorf("Transient = %v, want %v", Transient(err), tt.transient)
			}
		})
	}
}

func TestTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{fmt.Errorf("grade answer: %w", context.DeadlineExceeded), false},
		{&ErrMaxTokensExceeded{Limit: 512}, false},
		{errors.New("connection reset"), true},
		{&ErrInvalidResponse{Err: errors.New("bad json")}, true},
	}
	for _, tt := range tests {
		if got := Transient(tt.err); got != tt.want {
			t.Errorf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
	if _, ok := RetryAfter(errors.New("plain")); ok {
		t.Error("RetryAfter reported a rate limit for a plain error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
