package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestProgressBar_Fraction(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 4, 0},
		{1, 4, 0.25},
		{4, 4, 1},
		{6, 4, 1},
		{0, 0, 1},
	}
	for _, tt := range tests {
		got := NewProgressBar("", tt.done, tt.total, 40).Fraction()
		if got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestProgressBar_ViewShowsCount(t *testing.T) {
	view := NewProgressBar("Questions", 2, 5, 40).View()
	if !strings.Contains(view, "2/5") {
		t.Errorf("view %q does not contain count", view)
	}
}

func TestTextInput_LockIgnoresKeys(t *testing.T) {
	in := NewTextInput("answer", 0)
	in.Model.SetValue("100C")
	in.Lock()

	in, _ = in.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if in.Value() != "100C" {
		t.Errorf("Value = %q, want unchanged", in.Value())
	}

	in.Reset()
	if in.Locked() || in.Value() != "" {
		t.Errorf("after Reset: locked=%v value=%q", in.Locked(), in.Value())
	}
}

func TestTextInput_ValueTrimmed(t *testing.T) {
	in := NewTextInput("answer", 0)
	in.Model.SetValue("  photosynthesis ")
	if in.Value() != "photosynthesis" {
		t.Errorf("Value = %q", in.Value())
	}
}
