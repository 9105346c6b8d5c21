package llm

import "context"

type contextKey int

const (
	purposeKey contextKey = iota
	sessionKey
)

// WithPurpose labels the calls made under ctx (grade, hint, seed-gen, ...).
// The label is what `stepwise llm list --purpose` filters on.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// WithSession ties the calls made under ctx to a quiz session so its
// grading, follow-up and summary traffic can be read back together.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// SessionFrom returns the session set by WithSession, or "".
func SessionFrom(ctx context.Context) string {
	v, _ := ctx.Value(sessionKey).(string)
	return v
}
