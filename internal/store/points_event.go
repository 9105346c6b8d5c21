package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const pointsTable = "points_events"

func (r *EventStore) AppendPoints(ctx context.Context, data PointsEventData) error {
	return r.insert(ctx, pointsTable,
		[]string{"course_id", "user_id", "user_name", "points", "reason", "session_id"},
		[]any{data.CourseID, data.UserID, data.UserName, data.Points, data.Reason, data.SessionID},
	)
}

// CourseStandings sums points per user for a course, highest first.
func (r *EventStore) CourseStandings(ctx context.Context, courseID string, limit int) ([]CourseStanding, error) {
	sel := builder().Select(
		"user_id",
		entsql.As(entsql.Max("user_name"), "user_name"),
		entsql.As(entsql.Sum("points"), "total"),
	).
		From(entsql.Table(pointsTable)).
		Where(entsql.EQ("course_id", courseID)).
		GroupBy("user_id").
		OrderBy(entsql.Desc("total"), "user_id")
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("course standings: %w", err)
	}
	defer rows.Close()

	var out []CourseStanding
	for rows.Next() {
		var s CourseStanding
		if err := rows.Scan(&s.UserID, &s.UserName, &s.Points); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
