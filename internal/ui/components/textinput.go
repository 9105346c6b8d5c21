package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stepwise/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for free-text answers.
type TextInput struct {
	Model     textinput.Model
	MaxLength int
	locked    bool
}

// NewTextInput creates a focused answer input. maxLength of 0 means no limit.
func NewTextInput(placeholder string, maxLength int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxLength > 0 {
		ti.CharLimit = maxLength
	}

	return TextInput{
		Model:     ti,
		MaxLength: maxLength,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. A locked input ignores key presses.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok && t.locked {
		return t, nil
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.locked {
		view += " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render("…")
	}
	return view
}

// Value returns the trimmed input value.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Lock freezes the input while an answer is being graded.
func (t *TextInput) Lock() { t.locked = true }

// Unlock re-enables typing.
func (t *TextInput) Unlock() { t.locked = false }

// Locked reports whether the input is frozen.
func (t TextInput) Locked() bool { return t.locked }

// Reset clears the value and unlocks the input.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
	t.locked = false
}
