package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/abhisek/stepwise/internal/evaluator"
	"github.com/abhisek/stepwise/internal/quiztree"
	"github.com/abhisek/stepwise/internal/ui/components"
	"github.com/abhisek/stepwise/internal/ui/theme"
)

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

// block renders wrapped text as a centered column.
func block(width int, style lipgloss.Style, text string) string {
	col := style.Width(min(width-8, 70)).Render(text)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, col)
}

func (s *QuizScreen) renderQuestion(width int) string {
	v := s.view
	var b strings.Builder

	label := "Question"
	if v.Kind == quiztree.KindRefinement {
		label = fmt.Sprintf("Follow-up %d of %d", v.Progress.RefinementIndex+1, v.Progress.RefinementCount)
	}
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + label)
	bar := components.NewProgressBar("", v.Progress.CoreQuestionIndex, v.Progress.TotalCoreQuestions, 30)
	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(bar.View()) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + bar.View()
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	if v.ReferenceText != "" {
		b.WriteString(block(width, theme.Hint, v.ReferenceText))
		b.WriteString("\n\n")
	}

	b.WriteString(block(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), v.Question))
	b.WriteString("\n\n")

	b.WriteString(centered(width).Render("Answer: " + s.input.View()))

	if s.input.Locked() {
		b.WriteString("\n\n")
		b.WriteString(centered(width).Foreground(theme.TextDim).Render("Checking your answer..."))
	}
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(block(width, lipgloss.NewStyle().Foreground(theme.Error),
			"Could not check that answer: "+s.notice+"\nPress Enter to try again."))
	}

	return b.String()
}

func categoryHeadline(c evaluator.Category) (string, lipgloss.Style) {
	switch c {
	case evaluator.CategoryPerfect:
		return "Perfect!", theme.Correct
	case evaluator.CategoryCorrect:
		return "Correct", theme.Correct
	case evaluator.CategoryPartial:
		return "Partially correct", theme.Partial
	}
	return "Not quite", theme.Incorrect
}

func (s *QuizScreen) renderFeedback(width int) string {
	res := s.result
	var b strings.Builder
	b.WriteString("\n\n")

	headline, style := categoryHeadline(res.Category)
	b.WriteString(centered(width).Inherit(style).Render(headline))
	b.WriteString("\n\n")

	if fb := plainText(res.Feedback); fb != "" {
		b.WriteString(block(width, theme.Body, fb))
		b.WriteString("\n\n")
	}

	if res.Hint != "" {
		b.WriteString(block(width, lipgloss.NewStyle().Foreground(theme.Accent), "Hint: "+plainText(res.Hint)))
		b.WriteString("\n\n")
	}

	var notes []string
	if res.RefinementsCreated > 0 {
		notes = append(notes, fmt.Sprintf("%d follow-up questions added.", res.RefinementsCreated))
	}
	if res.ImproperlyAnswered {
		notes = append(notes, "Moving on to the next question.")
	}
	if res.PointsAwarded > 0 {
		notes = append(notes, fmt.Sprintf("+%d points", res.PointsAwarded))
	}
	if len(notes) > 0 {
		b.WriteString(centered(width).Foreground(theme.Secondary).Render(strings.Join(notes, "   ")))
		b.WriteString("\n\n")
	}

	b.WriteString(centered(width).Foreground(theme.TextDim).Render("Press any key to continue..."))
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width).Foreground(theme.Text).Bold(true).Render("End quiz early?"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.TextDim).Render("Unanswered questions will be dropped."))
	b.WriteString("\n\n")
	b.WriteString(centered(width).Foreground(theme.Success).Render("[Y] Yes, end quiz"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.Primary).Render("[N] No, keep going"))
	return b.String()
}

func renderLoading(width int) string {
	return centered(width).Foreground(theme.TextDim).Render("\n\n\n  Preparing your quiz...")
}

func renderError(width int, errMsg string) string {
	return centered(width).Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to exit.", errMsg))
}

// plainText flattens the small HTML fragments models reply with into
// terminal text, turning list items into bullets.
func plainText(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "li":
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			b.WriteString("• ")
		case n.Type == html.ElementNode && (n.Data == "br" || n.Data == "p"):
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && (n.Data == "li" || n.Data == "ul" || n.Data == "ol") {
			if !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
