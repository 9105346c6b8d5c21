package evaluator

import "regexp"

const (
	incorrectPhrase = "Incorrect, here are some suggestions for improvement"
	partialPhrase   = "Partially correct, here are some suggestions for improvement"

	// FollowUpTrailer is appended to first-attempt feedback for unsatisfactory
	// answers.
	FollowUpTrailer = "\nI'll ask you some more questions to help you get to the right answer."
)

var (
	wrongPattern   = regexp.MustCompile(`(?i)wrong`)
	partialPattern = regexp.MustCompile(`(?i)partially correct`)
)

// PostProcess rewrites the grader's bare verdicts into phrases announcing
// remediation. Satisfactory feedback is returned unchanged. The trailer is
// only added on a first attempt.
func PostProcess(cat Category, feedback string, firstAttempt bool) string {
	if cat.Satisfactory() {
		return feedback
	}
	out := wrongPattern.ReplaceAllLiteralString(feedback, incorrectPhrase)
	out = partialPattern.ReplaceAllLiteralString(out, partialPhrase)
	if firstAttempt {
		out += FollowUpTrailer
	}
	return out
}
