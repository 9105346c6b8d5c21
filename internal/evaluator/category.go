package evaluator

import "strings"

// Category is the outcome of grading one answer.
type Category string

const (
	CategoryPerfect   Category = "perfect"
	CategoryCorrect   Category = "correct"
	CategoryPartial   Category = "partial"
	CategoryIncorrect Category = "incorrect"
)

// Satisfactory reports whether the answer lets the learner move on without
// remediation.
func (c Category) Satisfactory() bool {
	return c == CategoryPerfect || c == CategoryCorrect
}

// leadLength is how much of the grader's reply is inspected for a verdict.
const leadLength = 20

// Rule maps a keyword in the lead of the grader's reply to a category.
type Rule interface {
	Name() string
	Match(lead string) bool
	Category() Category
}

type keywordRule struct {
	keyword  string
	category Category
}

func (r keywordRule) Name() string           { return r.keyword }
func (r keywordRule) Match(lead string) bool { return strings.Contains(lead, r.keyword) }
func (r keywordRule) Category() Category     { return r.category }

// DefaultRules returns the keyword rules in priority order. "partial" must
// be checked before "correct" since "partially correct" contains both, and
// "incorrect" before "correct" for the same reason.
func DefaultRules() []Rule {
	return []Rule{
		keywordRule{keyword: "partial", category: CategoryPartial},
		keywordRule{keyword: "incorrect", category: CategoryIncorrect},
		keywordRule{keyword: "correct", category: CategoryCorrect},
		keywordRule{keyword: "perfect", category: CategoryPerfect},
	}
}

// Classify lowercases the first characters of the grader's reply and returns
// the category of the first matching rule. Unrecognised replies are
// incorrect.
func Classify(rules []Rule, reply string) (Category, string) {
	lead := lowerLead(reply)
	for _, r := range rules {
		if r.Match(lead) {
			return r.Category(), r.Name()
		}
	}
	return CategoryIncorrect, ""
}

func lowerLead(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > leadLength {
		runes = runes[:leadLength]
	}
	return strings.ToLower(string(runes))
}
