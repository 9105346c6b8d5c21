package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/stepwise/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an
// event and mirrors a one-line summary to the structured logger.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	log       *slog.Logger
}

// WithLogging wraps a Provider with event logging. A nil repo disables
// persistence but keeps the log line.
func WithLogging(p Provider, repo store.EventRepo, log *slog.Logger) Provider {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.LLMRequestEventData{
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		SessionID:   SessionFrom(ctx),
		LatencyMs:   latencyMs,
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.log.Debug("llm request",
		"purpose", purpose,
		"session", data.SessionID,
		"model", data.Model,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
		"latency_ms", latencyMs,
		"success", data.Success,
	)

	// Log the event but don't fail the request if logging fails.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.log.Warn("failed to record LLM request event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
