package quiz

import (
	"github.com/abhisek/stepwise/internal/session"
)

// questionMsg carries the current question fetched from the runner.
type questionMsg struct {
	View *session.QuestionView
	Err  error
}

// answerMsg carries the graded outcome of a submitted answer.
type answerMsg struct {
	Result *session.SubmitResult
	Err    error
}

// quitDoneMsg is sent once the session has been abandoned.
type quitDoneMsg struct{}
