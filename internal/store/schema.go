package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Every event table shares the same header: a row id, the global sequence
// number and a unix-millisecond timestamp.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON llm_request_events (purpose)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_session ON llm_request_events (session_id)`,

	`CREATE TABLE IF NOT EXISTS answer_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		node_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		category TEXT NOT NULL,
		feedback TEXT NOT NULL,
		attempt INTEGER NOT NULL,
		refinements_created INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS answer_events_session ON answer_events (session_id)`,

	`CREATE TABLE IF NOT EXISTS session_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		course_id TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL DEFAULT '',
		core_questions INTEGER NOT NULL DEFAULT 0,
		summary TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS session_events_session ON session_events (session_id)`,

	`CREATE TABLE IF NOT EXISTS points_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		course_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL DEFAULT '',
		points INTEGER NOT NULL,
		reason TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS points_events_course ON points_events (course_id)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}
