package quiz

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/stepwise/internal/quiztree"
	"github.com/abhisek/stepwise/internal/router"
	"github.com/abhisek/stepwise/internal/screen"
	"github.com/abhisek/stepwise/internal/screens/summary"
	"github.com/abhisek/stepwise/internal/session"
	"github.com/abhisek/stepwise/internal/ui/components"
	"github.com/abhisek/stepwise/internal/ui/layout"
)

// DefaultTimeout bounds one grading round trip, which may involve several
// model calls.
const DefaultTimeout = 2 * time.Minute

// Runner is the slice of the session orchestrator the quiz screen drives.
type Runner interface {
	Current(ctx context.Context, id string) (*session.QuestionView, error)
	Submit(ctx context.Context, id, answer string) (*session.SubmitResult, error)
	Summary(ctx context.Context, id string) (string, error)
	Quit(ctx context.Context, id string) error
}

// QuizScreen implements screen.Screen for an active quiz session.
type QuizScreen struct {
	runner    Runner
	sessionID string
	timeout   time.Duration

	view        *session.QuestionView
	result      *session.SubmitResult // non-nil while feedback is shown
	tally       summary.Tally
	input       components.TextInput
	confirmQuit bool
	notice      string // recoverable error, shown under the question
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

// New creates a QuizScreen for a session that has already been started.
func New(runner Runner, sessionID string) *QuizScreen {
	return &QuizScreen{
		runner:    runner,
		sessionID: sessionID,
		timeout:   DefaultTimeout,
		input:     newAnswerInput(),
	}
}

func newAnswerInput() components.TextInput {
	return components.NewTextInput("Type your answer...", 500)
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(
		s.fetchQuestion(),
		s.input.Init(),
	)
}

func (s *QuizScreen) Title() string {
	if s.view != nil && s.view.Kind == quiztree.KindRefinement {
		return "Follow-up"
	}
	return "Quiz"
}

// Status shows the core question position and points earned so far.
func (s *QuizScreen) Status() string {
	if s.view == nil {
		return ""
	}
	p := s.view.Progress
	pos := min(p.CoreQuestionIndex+1, p.TotalCoreQuestions)
	return fmt.Sprintf("Q %d/%d   ★ %d", pos, p.TotalCoreQuestions, s.tally.Points)
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Exit"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End quiz"},
			{Key: "N", Description: "Keep going"},
		}
	case s.result != nil:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.input.Locked():
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *QuizScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.view == nil:
		return renderLoading(width)
	case s.confirmQuit:
		return renderQuitConfirm(width)
	case s.result != nil:
		return s.renderFeedback(width)
	}
	return s.renderQuestion(width)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionMsg:
		return s.handleQuestion(msg)

	case answerMsg:
		return s.handleAnswer(msg)

	case quitDoneMsg:
		return s, tea.Quit

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *QuizScreen) handleQuestion(msg questionMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	if msg.View.Finished {
		s.tally.Progress = msg.View.Progress
		next := summary.New(s.runner, s.sessionID, s.tally)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
	s.view = msg.View
	s.input.Reset()
	return s, s.input.Init()
}

func (s *QuizScreen) handleAnswer(msg answerMsg) (screen.Screen, tea.Cmd) {
	s.input.Unlock()
	if msg.Err != nil {
		// The session is unchanged, so the same answer can be resubmitted.
		s.notice = msg.Err.Error()
		return s, nil
	}
	s.tally.Record(msg.Result)
	s.result = msg.Result
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, tea.Quit
	}
	if s.view == nil {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			return s, s.quit()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	// Feedback overlay: any key moves on to whatever the session serves next.
	if s.result != nil {
		s.result = nil
		return s, s.fetchQuestion()
	}

	if s.input.Locked() {
		return s, nil
	}

	switch key {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "enter":
		return s.submitAnswer()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *QuizScreen) submitAnswer() (screen.Screen, tea.Cmd) {
	answer := s.input.Value()
	if answer == "" {
		return s, nil
	}
	s.notice = ""
	s.input.Lock()

	runner, id, timeout := s.runner, s.sessionID, s.timeout
	return s, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := runner.Submit(ctx, id, answer)
		return answerMsg{Result: res, Err: err}
	}
}

func (s *QuizScreen) fetchQuestion() tea.Cmd {
	runner, id := s.runner, s.sessionID
	return func() tea.Msg {
		view, err := runner.Current(context.Background(), id)
		return questionMsg{View: view, Err: err}
	}
}

func (s *QuizScreen) quit() tea.Cmd {
	runner, id := s.runner, s.sessionID
	return func() tea.Msg {
		_ = runner.Quit(context.Background(), id)
		return quitDoneMsg{}
	}
}
