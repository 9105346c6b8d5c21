package summary

import (
	"github.com/abhisek/stepwise/internal/evaluator"
	"github.com/abhisek/stepwise/internal/quiztree"
	"github.com/abhisek/stepwise/internal/session"
)

// Tally counts graded answers over one quiz as seen by the terminal client.
type Tally struct {
	Answered    int
	Perfect     int
	Correct     int
	Partial     int
	Incorrect   int
	Skipped     int // refinements moved past after repeated misses
	Refinements int
	Points      int
	Progress    quiztree.Progress
}

// Record adds one submit result.
func (t *Tally) Record(res *session.SubmitResult) {
	if res == nil {
		return
	}
	t.Answered++
	switch res.Category {
	case evaluator.CategoryPerfect:
		t.Perfect++
	case evaluator.CategoryCorrect:
		t.Correct++
	case evaluator.CategoryPartial:
		t.Partial++
	default:
		t.Incorrect++
	}
	if res.ImproperlyAnswered {
		t.Skipped++
	}
	t.Refinements += res.RefinementsCreated
	t.Points += res.PointsAwarded
	t.Progress = res.Progress
}
