package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/stepwise/internal/llm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		reply string
		want  Category
	}{
		{"Perfect", CategoryPerfect},
		{"Correct\n<ul><li>Nice</li></ul>", CategoryCorrect},
		{"Partially correct\n<ul><li>Add units</li></ul>", CategoryPartial},
		{"PARTIALLY CORRECT", CategoryPartial},
		{"Wrong\n<ul><li>Revisit boiling</li></ul>", CategoryIncorrect},
		{"Incorrect, the answer is 100C", CategoryIncorrect},
		{"I am not sure what to say", CategoryIncorrect},
		{"", CategoryIncorrect},
		// The verdict must appear in the lead of the reply.
		{"Your answer touches on the topic but is correct", CategoryIncorrect},
		{"  \n  Correct", CategoryCorrect},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, _ := Classify(DefaultRules(), tt.reply)
			if got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.reply, got, tt.want)
			}
		})
	}
}

func TestClassify_ReportsRule(t *testing.T) {
	_, rule := Classify(DefaultRules(), "Partially correct")
	if rule != "partial" {
		t.Errorf("rule = %q, want partial", rule)
	}
	_, rule = Classify(DefaultRules(), "No idea")
	if rule != "" {
		t.Errorf("rule = %q, want empty", rule)
	}
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name         string
		cat          Category
		feedback     string
		firstAttempt bool
		want         string
	}{
		{
			name:         "wrong on first attempt",
			cat:          CategoryIncorrect,
			feedback:     "Wrong\n<ul><li>Check units</li></ul>",
			firstAttempt: true,
			want:         incorrectPhrase + "\n<ul><li>Check units</li></ul>" + FollowUpTrailer,
		},
		{
			name:     "partial on retry has no trailer",
			cat:      CategoryPartial,
			feedback: "Partially Correct\n<ul></ul>",
			want:     partialPhrase + "\n<ul></ul>",
		},
		{
			name:     "any casing of wrong",
			cat:      CategoryIncorrect,
			feedback: "WRONG. wrong. WrOnG.",
			want:     incorrectPhrase + ". " + incorrectPhrase + ". " + incorrectPhrase + ".",
		},
		{
			name:         "correct is untouched",
			cat:          CategoryCorrect,
			feedback:     "Correct, nothing wrong here",
			firstAttempt: true,
			want:         "Correct, nothing wrong here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PostProcess(tt.cat, tt.feedback, tt.firstAttempt)
			if got != tt.want {
				t.Errorf("PostProcess() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestPostProcess_NoWrongSurvives(t *testing.T) {
	for _, fb := range []string{"wrong", "Wrong answer", "so WRONG", "wrongly wrong"} {
		got := PostProcess(CategoryIncorrect, fb, true)
		if strings.Contains(strings.ToLower(got), "wrong") {
			t.Errorf("PostProcess(%q) still contains wrong: %q", fb, got)
		}
	}
}

type purposeRecorder struct {
	inner    *llm.MockProvider
	purposes []string
}

func (p *purposeRecorder) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.purposes = append(p.purposes, llm.PurposeFrom(ctx))
	return p.inner.Generate(ctx, req)
}

func (p *purposeRecorder) ModelID() string { return p.inner.ModelID() }

func reply(text string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(text)}
}

var boiling = Input{
	ReferenceText: "Water boils at 100C",
	Question:      "At what temperature does water boil?",
	Answer:        "50C",
}

func TestEvaluateFirst(t *testing.T) {
	mock := llm.NewMockProvider(reply("Wrong\n<ul><li>Recheck the passage</li></ul>"))
	rec := &purposeRecorder{inner: mock}
	ev := New(rec, DefaultConfig())

	res, err := ev.EvaluateFirst(context.Background(), boiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Category != CategoryIncorrect || res.Attempt != 1 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.HasSuffix(res.Feedback, FollowUpTrailer) {
		t.Errorf("feedback missing trailer: %q", res.Feedback)
	}
	if strings.Contains(res.Feedback, "Wrong") {
		t.Errorf("feedback still says Wrong: %q", res.Feedback)
	}

	call := mock.Calls[0]
	if call.System != gradeSystemPrompt {
		t.Error("first attempt should use the standard grading prompt")
	}
	msg := call.Messages[0].Content
	for _, want := range []string{"<REFERENCE_TEXT>Water boils at 100C</REFERENCE_TEXT>", "<ANSWER>50C</ANSWER>"} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "PREVIOUS_FEEDBACK") {
		t.Error("first attempt must not include previous feedback")
	}
	if rec.purposes[0] != "grade" {
		t.Errorf("purpose = %q, want grade", rec.purposes[0])
	}
}

func TestEvaluateRefinement_PriorFeedbackOnlyOnSecondAttempt(t *testing.T) {
	mock := llm.NewMockProvider(
		reply("Partially correct\n<ul><li>Mention sea level</li></ul>"),
		reply("Correct"),
	)
	rec := &purposeRecorder{inner: mock}
	ev := New(rec, DefaultConfig())
	ctx := context.Background()

	first, err := ev.EvaluateRefinement(ctx, boiling, nil)
	if err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if first.Category != CategoryPartial || first.Attempt != 1 {
		t.Fatalf("first = %+v", first)
	}
	if strings.HasSuffix(first.Feedback, FollowUpTrailer) {
		t.Error("refinement feedback must not carry the follow-up trailer")
	}
	if !strings.HasPrefix(first.Feedback, partialPhrase) {
		t.Errorf("feedback = %q", first.Feedback)
	}
	if strings.Contains(mock.Calls[0].Messages[0].Content, "PREVIOUS_FEEDBACK") {
		t.Error("first refinement attempt must not include previous feedback")
	}

	second, err := ev.EvaluateRefinement(ctx, boiling, []string{first.Feedback})
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if second.Category != CategoryCorrect || second.Attempt != 2 {
		t.Fatalf("second = %+v", second)
	}
	call := mock.Calls[1]
	if call.System != gradeRetrySystemPrompt {
		t.Error("second attempt should use the lenient prompt")
	}
	if !strings.Contains(call.Messages[0].Content, "<PREVIOUS_FEEDBACK>"+first.Feedback+"</PREVIOUS_FEEDBACK>") {
		t.Errorf("second attempt prompt lacks prior feedback:\n%s", call.Messages[0].Content)
	}
	if rec.purposes[1] != "grade-retry" {
		t.Errorf("purpose = %q, want grade-retry", rec.purposes[1])
	}
}

func TestEvaluateRefinement_Exhausted(t *testing.T) {
	mock := llm.NewMockProvider()
	ev := New(mock, DefaultConfig())

	_, err := ev.EvaluateRefinement(context.Background(), boiling, []string{"a", "b"})
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("err = %v, want ErrAttemptsExhausted", err)
	}
	if mock.CallCount() != 0 {
		t.Error("no grading call expected once attempts are exhausted")
	}
}

func TestEvaluate_ProviderFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	ev := New(mock, DefaultConfig())

	_, err := ev.EvaluateFirst(context.Background(), boiling)
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("err = %v, want rate limit", err)
	}
}

func TestEvaluate_EmptyReplyIsAnError(t *testing.T) {
	ev := New(llm.NewMockProvider(reply("   ")), DefaultConfig())

	_, err := ev.EvaluateFirst(context.Background(), boiling)
	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want invalid response", err)
	}
}
