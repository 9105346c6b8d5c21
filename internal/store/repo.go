package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	Purpose   string // LLM events only: exact purpose label
	SessionID string // LLM events only: calls made for one quiz session
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string // empty for calls made outside a session
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls by purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage by model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// AnswerEventData records one graded answer.
type AnswerEventData struct {
	SessionID          string
	NodeID             int
	Kind               string
	Question           string
	Answer             string
	Category           string
	Feedback           string
	Attempt            int
	RefinementsCreated int
}

// AnswerEvent is a stored answer event.
type AnswerEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// Session lifecycle actions.
const (
	SessionStarted   = "started"
	SessionFinished  = "finished"
	SessionCompleted = "completed"
	SessionQuit      = "quit"
)

// SessionEventData records a session lifecycle transition.
type SessionEventData struct {
	SessionID     string
	Action        string
	CourseID      string
	UserID        string
	CoreQuestions int
	Summary       string
}

// PointsEventData records points awarded to a user in a course.
type PointsEventData struct {
	CourseID  string
	UserID    string
	UserName  string
	Points    int
	Reason    string
	SessionID string
}

// CourseStanding is a user's accumulated points within a course.
type CourseStanding struct {
	UserID   string
	UserName string
	Points   int
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// ActivityRepo records what happens inside a quiz session.
type ActivityRepo interface {
	AppendAnswer(ctx context.Context, data AnswerEventData) error
	AppendSession(ctx context.Context, data SessionEventData) error
}

// PointsRepo is the local points ledger.
type PointsRepo interface {
	AppendPoints(ctx context.Context, data PointsEventData) error
	CourseStandings(ctx context.Context, courseID string, limit int) ([]CourseStanding, error)
}

var (
	_ EventRepo    = (*EventStore)(nil)
	_ ActivityRepo = (*EventStore)(nil)
	_ PointsRepo   = (*EventStore)(nil)
)
