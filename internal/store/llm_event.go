package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const llmTable = "llm_request_events"

var llmColumns = []string{
	"provider", "model", "purpose", "session_id", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("not found")

func (r *EventStore) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.insert(ctx, llmTable, llmColumns, []any{
		data.Provider, data.Model, data.Purpose, data.SessionID, data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody,
	})
}

// QueryLLMEvents returns LLM events newest first.
func (r *EventStore) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := builder().Select(append([]string{"id", "sequence", "timestamp"}, llmColumns...)...).
		From(entsql.Table(llmTable)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	query, args := window(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		ev, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// GetLLMEvent returns a single event by row ID.
func (r *EventStore) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	query, args := builder().Select(append([]string{"id", "sequence", "timestamp"}, llmColumns...)...).
		From(entsql.Table(llmTable)).
		Where(entsql.EQ("id", id)).
		Query()

	ev, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("llm event %d: %w", id, ErrNotFound)
	}
	return ev, err
}

// LLMUsageByPurpose aggregates calls and tokens per purpose.
func (r *EventStore) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	query, args := builder().Select(
		"purpose",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
	).
		From(entsql.Table(llmTable)).
		GroupBy("purpose").
		OrderBy(entsql.Desc("calls")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("llm usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		var avg sql.NullFloat64
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg.Float64)
		out = append(out, u)
	}
	return out, rows.Err()
}

// LLMUsageByModel aggregates calls and tokens per model.
func (r *EventStore) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	query, args := builder().Select(
		"model",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
	).
		From(entsql.Table(llmTable)).
		GroupBy("model").
		OrderBy(entsql.Desc("calls")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("llm usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(row rowScanner) (*LLMEvent, error) {
	var ev LLMEvent
	var ts int64
	err := row.Scan(&ev.ID, &ev.Sequence, &ts,
		&ev.Provider, &ev.Model, &ev.Purpose, &ev.SessionID, &ev.InputTokens, &ev.OutputTokens,
		&ev.LatencyMs, &ev.Success, &ev.ErrorMessage, &ev.RequestBody, &ev.ResponseBody)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan llm event: %w", err)
	}
	ev.Timestamp = fromMillis(ts)
	return &ev, nil
}
