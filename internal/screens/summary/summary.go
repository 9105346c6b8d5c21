package summary

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stepwise/internal/screen"
	"github.com/abhisek/stepwise/internal/ui/layout"
	"github.com/abhisek/stepwise/internal/ui/theme"
)

// Summarizer produces the closing summary of a finished session.
type Summarizer interface {
	Summary(ctx context.Context, id string) (string, error)
}

type summaryMsg struct {
	Text string
	Err  error
}

// SummaryScreen displays the quiz results and the written summary.
type SummaryScreen struct {
	source    Summarizer
	sessionID string
	tally     Tally
	text      string
	err       error
	loading   bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.StatusProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. The summary is fetched on Init.
func New(source Summarizer, sessionID string, tally Tally) *SummaryScreen {
	return &SummaryScreen{source: source, sessionID: sessionID, tally: tally}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return s.fetch()
}

func (s *SummaryScreen) fetch() tea.Cmd {
	s.loading = true
	s.err = nil
	source, id := s.source, s.sessionID
	return func() tea.Msg {
		text, err := source.Summary(context.Background(), id)
		return summaryMsg{Text: text, Err: err}
	}
}

func (s *SummaryScreen) Title() string {
	return "Quiz Summary"
}

func (s *SummaryScreen) Status() string {
	return fmt.Sprintf("★ %d", s.tally.Points)
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	if s.err != nil {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry summary"},
			{Key: "Enter", Description: "Exit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Exit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryMsg:
		s.loading = false
		s.text, s.err = msg.Text, msg.Err
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r", "R":
			if s.err != nil && !s.loading {
				return s, s.fetch()
			}
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	t := s.tally
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Quiz complete!"))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Questions: %d        Answers: %d        Points: %d",
		t.Progress.TotalCoreQuestions, t.Answered, t.Points)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(statsLine))
	b.WriteString("\n")

	breakdown := fmt.Sprintf("Perfect %d   Correct %d   Partial %d   Incorrect %d   Follow-ups %d",
		t.Perfect, t.Correct, t.Partial, t.Incorrect, t.Refinements)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(breakdown))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Summary")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	var body string
	style := lipgloss.NewStyle().Width(min(width-8, 70)).Foreground(theme.Text)
	switch {
	case s.loading:
		body = "Writing your summary..."
		style = style.Foreground(theme.TextDim)
	case s.err != nil:
		body = fmt.Sprintf("Could not write the summary: %v", s.err)
		style = style.Foreground(theme.Error)
	default:
		body = s.text
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(body)))

	return b.String()
}
