// Package ranking records the points learners earn in a course and reads
// course leaderboards back.
package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/stepwise/internal/store"
)

// Points awarded per outcome.
const (
	PointsPerfect     = 10
	PointsCorrect     = 5
	PointsRefinements = 3
	// PointsPerCompleted is multiplied by the number of questions completed
	// when a quiz is finished.
	PointsPerCompleted = 20
)

// Owner identifies who is earning points, and where.
type Owner struct {
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// Valid reports whether points can be attributed to this owner.
func (o Owner) Valid() bool {
	return o.CourseID != "" && o.UserID != ""
}

// Award is a single points grant.
type Award struct {
	Owner
	Points    int
	Reason    string
	SessionID string
}

// Standing is one leaderboard row.
type Standing struct {
	UserID   string `json:"user_id" bson:"user_id"`
	UserName string `json:"user_name" bson:"user_name"`
	Points   int    `json:"points" bson:"points"`
	Rank     int    `json:"rank" bson:"-"`
}

// Reporter records awards.
type Reporter interface {
	Report(ctx context.Context, a Award) error
}

// Leaderboard reads the top of a course's standings.
type Leaderboard interface {
	Top(ctx context.Context, courseID string, limit int) ([]Standing, error)
}

// Multi fans an award out to every reporter and joins their errors.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, a Award) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ledger records awards in the local event store.
type Ledger struct {
	repo store.PointsRepo
}

// NewLedger creates a Ledger over the store's points table.
func NewLedger(repo store.PointsRepo) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) Report(ctx context.Context, a Award) error {
	err := l.repo.AppendPoints(ctx, store.PointsEventData{
		CourseID:  a.CourseID,
		UserID:    a.UserID,
		UserName:  a.UserName,
		Points:    a.Points,
		Reason:    a.Reason,
		SessionID: a.SessionID,
	})
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	return nil
}

// Top returns the course totals from the ledger.
func (l *Ledger) Top(ctx context.Context, courseID string, limit int) ([]Standing, error) {
	rows, err := l.repo.CourseStandings(ctx, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	out := make([]Standing, len(rows))
	for i, r := range rows {
		out[i] = Standing{UserID: r.UserID, UserName: r.UserName, Points: r.Points, Rank: i + 1}
	}
	return out, nil
}
