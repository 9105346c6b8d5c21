package session

import (
	"sync"
	"time"

	"github.com/abhisek/stepwise/internal/evaluator"
	"github.com/abhisek/stepwise/internal/quiztree"
	"github.com/abhisek/stepwise/internal/ranking"
)

// Phase is where a session is in its lifecycle.
type Phase int

const (
	PhaseActive   Phase = iota // Serving questions
	PhaseFinished              // All questions answered, summary pending
	PhaseSummarized            // Summary produced, questions released
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	case PhaseSummarized:
		return "summarized"
	}
	return "unknown"
}

// Outcome is one graded answer, as it appears in the summary transcript.
type Outcome struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Category evaluator.Category `json:"category"`
	Feedback string             `json:"feedback"`
}

// Session is one learner's run through a question forest.
type Session struct {
	// ID is the opaque identifier handed to the client.
	ID string

	// Owner carries the course and user that points are credited to.
	Owner ranking.Owner

	// StartTime is when the session began.
	StartTime time.Time

	// mu serializes turns on this session.
	mu sync.Mutex

	engine  *quiztree.Engine
	log     []Outcome
	phase   Phase
	summary string

	// total is the number of core questions the session started with.
	total int

	// points is the running total awarded during this session.
	points int

	// credited is set once the completion award was paid out.
	credited bool
}

func newSession(id string, owner ranking.Owner, engine *quiztree.Engine, now time.Time) *Session {
	s := &Session{
		ID:        id,
		Owner:     owner,
		StartTime: now,
		engine:    engine,
		total:     engine.Progress().TotalCoreQuestions,
	}
	if engine.IsFinished() {
		s.phase = PhaseFinished
	}
	return s
}

// release drops the engine and outcome log once the summary exists.
func (s *Session) release(summary string) {
	s.summary = summary
	s.phase = PhaseSummarized
	s.engine = nil
	s.log = nil
}

// QuestionView is what a client sees when fetching the current question.
// Question and ReferenceText are empty once the quiz is finished.
type QuestionView struct {
	Question      string            `json:"question,omitempty"`
	ReferenceText string            `json:"reference_text,omitempty"`
	Kind          quiztree.Kind     `json:"kind,omitempty"`
	Progress      quiztree.Progress `json:"progress"`
	Finished      bool              `json:"finished"`
}

// SubmitResult reports the outcome of one answered question.
type SubmitResult struct {
	Category           evaluator.Category `json:"category"`
	Feedback           string             `json:"feedback"`
	MoveToNext         bool               `json:"move_to_next"`
	ImproperlyAnswered bool               `json:"improperly_answered"`
	Hint               string             `json:"hint,omitempty"`
	RefinementsCreated int                `json:"refinements_created"`
	PointsAwarded      int                `json:"points_awarded"`
	Finished           bool               `json:"finished"`
	Progress           quiztree.Progress  `json:"progress"`
}
