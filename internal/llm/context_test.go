package llm

import (
	"context"
	"testing"
)

func TestContextLabels(t *testing.T) {
	ctx := context.Background()
	if got := PurposeFrom(ctx); got != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q, want unknown", got)
	}
	if got := SessionFrom(ctx); got != "" {
		t.Errorf("SessionFrom(empty) = %q, want empty", got)
	}

	ctx = WithSession(WithPurpose(ctx, "grade"), "s1")
	if got := PurposeFrom(ctx); got != "grade" {
		t.Errorf("PurposeFrom = %q, want grade", got)
	}
	if got := SessionFrom(ctx); got != "s1" {
		t.Errorf("SessionFrom = %q, want s1", got)
	}

	// A nested purpose keeps the session.
	ctx = WithPurpose(ctx, "hint")
	if PurposeFrom(ctx) != "hint" || SessionFrom(ctx) != "s1" {
		t.Errorf("nested labels = %q/%q", PurposeFrom(ctx), SessionFrom(ctx))
	}
}
