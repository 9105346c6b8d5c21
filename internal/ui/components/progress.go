package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/stepwise/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for done out of total steps.
type ProgressBar struct {
	Label string
	Done  int
	Total int
	Width int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, done, total, width int) ProgressBar {
	return ProgressBar{
		Label: label,
		Done:  done,
		Total: total,
		Width: width,
	}
}

// Fraction returns Done/Total clamped to [0, 1]. An empty bar is complete.
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	f := float64(p.Done) / float64(p.Total)
	return max(0, min(f, 1))
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	count := fmt.Sprintf("  %d/%d", p.Done, p.Total)
	barWidth := max(p.Width-lipgloss.Width(result)-len(count), 4)

	filled := int(float64(barWidth) * p.Fraction())
	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(count)

	return result
}
