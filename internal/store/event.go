package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number shared across
// all event types. Each event type lives in its own table, so per-table
// auto-increment IDs can't establish cross-type ordering. This shared
// counter assigns a single increasing sequence to every event regardless of
// type, so an answer, the LLM calls it triggered and the points it earned
// can be replayed in order.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// EventStore implements the event repositories on SQLite.
type EventStore struct {
	db  *sql.DB
	seq *sequenceCounter
}

// insert stamps a row with the next sequence number and the current time,
// then writes it.
func (r *EventStore) insert(ctx context.Context, table string, columns []string, values []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	cols := append([]string{"sequence", "timestamp"}, columns...)
	vals := append([]any{seqNum, time.Now().UnixMilli()}, values...)

	query, args := builder().Insert(table).Columns(cols...).Values(vals...).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// window narrows a selector by the sequence/time bounds and limit in opts.
func window(s *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if opts.After > 0 {
		s.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		s.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		s.Where(entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		s.Where(entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	if opts.Limit > 0 {
		s.Limit(opts.Limit)
	}
	return s
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
