package questiongen

import (
	"fmt"
	"strings"
)

// Candidate is a generated question before it is accepted.
type Candidate struct {
	Question string
	Answer   string
}

// Validator checks a generated question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for logging, e.g. "structural".
	Name() string

	// Validate returns nil if the candidate passes.
	Validate(c *Candidate) *ValidationError
}

// ValidationError describes why a candidate was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// runValidators returns the first failure, or nil.
func runValidators(validators []Validator, c *Candidate) *ValidationError {
	for _, v := range validators {
		if verr := v.Validate(c); verr != nil {
			return verr
		}
	}
	return nil
}

// maxQuestionLength bounds question text in runes.
const maxQuestionLength = 500

// StructuralValidator checks that the question is present, reasonably short
// and phrased as a question. When RequireAnswer is set the expected answer
// must be present too.
type StructuralValidator struct {
	RequireAnswer bool
}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(c *Candidate) *ValidationError {
	if c.Question == "" {
		return &ValidationError{Validator: v.Name(), Message: "question is empty"}
	}
	if len([]rune(c.Question)) > maxQuestionLength {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("question exceeds %d characters", maxQuestionLength)}
	}
	if !strings.HasSuffix(c.Question, "?") {
		return &ValidationError{Validator: v.Name(), Message: "question does not end with a question mark"}
	}
	if v.RequireAnswer && c.Answer == "" {
		return &ValidationError{Validator: v.Name(), Message: "answer is empty"}
	}
	return nil
}

// dedupe drops candidates whose normalized question was already seen,
// keeping the first occurrence.
func dedupe(cands []Candidate) []Candidate {
	seen := make(map[string]bool, len(cands))
	out := cands[:0]
	for _, c := range cands {
		key := normalizeQuestion(c.Question)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func normalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
