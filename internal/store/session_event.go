package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	answerTable  = "answer_events"
	sessionTable = "session_events"
)

var answerColumns = []string{
	"session_id", "node_id", "kind", "question", "answer",
	"category", "feedback", "attempt", "refinements_created",
}

func (r *EventStore) AppendSession(ctx context.Context, data SessionEventData) error {
	return r.insert(ctx, sessionTable,
		[]string{"session_id", "action", "course_id", "user_id", "core_questions", "summary"},
		[]any{data.SessionID, data.Action, data.CourseID, data.UserID, data.CoreQuestions, data.Summary},
	)
}

func (r *EventStore) AppendAnswer(ctx context.Context, data AnswerEventData) error {
	return r.insert(ctx, answerTable, answerColumns, []any{
		data.SessionID, data.NodeID, data.Kind, data.Question, data.Answer,
		data.Category, data.Feedback, data.Attempt, data.RefinementsCreated,
	})
}

// AnswersForSession returns the answers recorded for a session in the order
// they were given.
func (r *EventStore) AnswersForSession(ctx context.Context, sessionID string) ([]AnswerEvent, error) {
	query, args := builder().Select(append([]string{"id", "sequence", "timestamp"}, answerColumns...)...).
		From(entsql.Table(answerTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []AnswerEvent
	for rows.Next() {
		var ev AnswerEvent
		var ts int64
		err := rows.Scan(&ev.ID, &ev.Sequence, &ts,
			&ev.SessionID, &ev.NodeID, &ev.Kind, &ev.Question, &ev.Answer,
			&ev.Category, &ev.Feedback, &ev.Attempt, &ev.RefinementsCreated)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		ev.Timestamp = fromMillis(ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// SessionActions returns the lifecycle actions recorded for a session, oldest first.
func (r *EventStore) SessionActions(ctx context.Context, sessionID string) ([]string, error) {
	query, args := builder().Select("action").
		From(entsql.Table(sessionTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session actions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
