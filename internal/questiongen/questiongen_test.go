package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/stepwise/internal/document"
	"github.com/abhisek/stepwise/internal/llm"
	"github.com/abhisek/stepwise/internal/quiztree"
)

func TestParseLines(t *testing.T) {
	text := `
Lyon is not the capital. What is the capital of France? | Paris
- Which landmark is in Paris? | Eiffel Tower

2. What river runs through Paris?
`
	got := ParseLines(text)
	want := []Candidate{
		{Question: "Lyon is not the capital. What is the capital of France?", Answer: "Paris"},
		{Question: "Which landmark is in Paris?", Answer: "Eiffel Tower"},
		{Question: "What river runs through Paris?", Answer: ""},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStructuralValidator(t *testing.T) {
	tests := []struct {
		name    string
		v       StructuralValidator
		c       Candidate
		wantErr bool
	}{
		{"valid", StructuralValidator{}, Candidate{Question: "Why?"}, false},
		{"empty", StructuralValidator{}, Candidate{}, true},
		{"no question mark", StructuralValidator{}, Candidate{Question: "Here are your questions:"}, true},
		{"too long", StructuralValidator{}, Candidate{Question: strings.Repeat("a", 501) + "?"}, true},
		{"answer required", StructuralValidator{RequireAnswer: true}, Candidate{Question: "Why?"}, true},
		{"answer present", StructuralValidator{RequireAnswer: true}, Candidate{Question: "Why?", Answer: "Because"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate(&tt.c)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]Candidate{
		{Question: "What is  water?"},
		{Question: "what is water?"},
		{Question: "What is ice?"},
	})
	if len(got) != 2 || got[1].Question != "What is ice?" {
		t.Errorf("dedupe = %+v", got)
	}
}

func TestRefinerSynthesize(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		"Sure, here you go:\nAt sea level, what temperature does water boil at in Celsius? | 100C\nWhat unit is 212 measured in? | Fahrenheit\n",
	)})
	r := NewRefiner(mock, DefaultConfig(), nil)

	got, err := r.Synthesize(context.Background(), RefinementInput{
		ReferenceText: "Water boils at 100C",
		Question:      "At what temperature does water boil?",
		Answer:        "50C",
		Feedback:      "Partially correct",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"At sea level, what temperature does water boil at in Celsius?",
		"What unit is 212 measured in?",
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %q, want %q", got, want)
	}

	msg := mock.Calls[0].Messages[0].Content
	for _, s := range []string{"PROVIDED TEXT: Water boils at 100C", "PREVIOUS ANSWER: 50C", "FEEDBACK: Partially correct"} {
		if !strings.Contains(msg, s) {
			t.Errorf("prompt missing %q", s)
		}
	}
}

func TestRefinerSynthesize_Cap(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("A? | 1\nB? | 2\nC? | 3\nD? | 4")})
	cfg := DefaultConfig()
	cfg.MaxRefinements = 2

	got, err := NewRefiner(mock, cfg, nil).Synthesize(context.Background(), RefinementInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1] != "B?" {
		t.Errorf("got %q", got)
	}
}

func TestRefinerSynthesize_Failure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})

	_, err := NewRefiner(mock, DefaultConfig(), nil).Synthesize(context.Background(), RefinementInput{})
	var pu *llm.ErrProviderUnavailable
	if !errors.As(err, &pu) {
		t.Fatalf("err = %v, want provider unavailable", err)
	}
}

func TestIndexBest(t *testing.T) {
	ix := NewIndex([]string{
		"Photosynthesis converts sunlight into chemical energy inside chloroplasts.",
		"Water boils at 100 degrees Celsius at sea level.",
		"Paris is the capital of France and home to the Eiffel Tower.",
	})

	tests := []struct {
		query string
		want  int
	}{
		{"At what temperature does water boil? 100 degrees", 1},
		{"Which organelle hosts photosynthesis? chloroplasts", 0},
		{"What is the capital of France? Paris", 2},
		{"zzz qqq", 0},
	}
	for _, tt := range tests {
		if got := ix.Best(tt.query); got != tt.want {
			t.Errorf("Best(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}

	if NewIndex(nil).Best("anything") != -1 {
		t.Error("empty index should return -1")
	}
}

func TestSeedGenerator(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions": [
		{"question": "At what temperature does water boil?", "answer": "100 degrees Celsius"},
		{"question": "at what temperature does water boil?", "answer": "100C"},
		{"question": "Name the capital of France", "answer": "Paris"},
		{"question": "What is the capital of France?", "answer": "Paris"},
		{"question": "What does photosynthesis convert?", "answer": "Sunlight"}
	]}`)})
	passages := []string{
		"Water boils at 100 degrees Celsius at sea level.",
		"Paris is the capital of France.",
		"Photosynthesis converts sunlight into chemical energy.",
	}

	seeds, err := NewSeedGenerator(mock, DefaultConfig(), nil).Generate(context.Background(), strings.Join(passages, "\n"), passages, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []quiztree.Seed{
		{ReferenceText: passages[0], Question: "At what temperature does water boil?", Answer: "100 degrees Celsius"},
		{ReferenceText: passages[1], Question: "What is the capital of France?", Answer: "Paris"},
	}
	if len(seeds) != len(want) {
		t.Fatalf("got %d seeds, want %d: %+v", len(seeds), len(want), seeds)
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Errorf("seed %d = %+v, want %+v", i, seeds[i], want[i])
		}
	}

	call := mock.Calls[0]
	if call.Schema != SeedSchema {
		t.Error("expected structured output schema")
	}
	if !strings.Contains(call.System, "generate 2 questions") {
		t.Errorf("system prompt does not carry the count:\n%s", call.System)
	}
}

func TestSeedGenerator_NoPassagesUsesWholeText(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[{"question":"Why?","answer":"Because"}]}`)})

	seeds, err := NewSeedGenerator(mock, DefaultConfig(), nil).Generate(context.Background(), "  The whole text.  ", nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seeds) != 1 || seeds[0].ReferenceText != "The whole text." {
		t.Errorf("seeds = %+v", seeds)
	}
}

func TestSeedGenerator_EdgeCases(t *testing.T) {
	gen := NewSeedGenerator(llm.NewMockProvider(), DefaultConfig(), nil)

	if _, err := gen.Generate(context.Background(), "text", nil, 0); !errors.Is(err, quiztree.ErrInvalidArgument) {
		t.Errorf("count 0: err = %v, want ErrInvalidArgument", err)
	}
	seeds, err := gen.Generate(context.Background(), "   ", nil, 3)
	if err != nil || len(seeds) != 0 {
		t.Errorf("blank text: seeds = %v, err = %v", seeds, err)
	}
}

func TestSeedGenerator_MalformedJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})

	_, err := NewSeedGenerator(mock, DefaultConfig(), nil).Generate(context.Background(), "text", nil, 1)
	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want invalid response", err)
	}
}

func TestSeedGenerator_FromDocuments(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[
		{"question":"What do leaves use to make sugar?","answer":"Sunlight"}
	]}`)})
	gen := NewSeedGenerator(mock, DefaultConfig(), nil)

	docs := []*document.Document{
		{Sections: []*document.Section{{Title: "Water", Text: "Water boils at 100C at sea level."}}},
		{Sections: []*document.Section{{Title: "Plants", Text: "Leaves use sunlight to make sugar from water and air."}}},
	}
	seeds, err := gen.FromDocuments(context.Background(), docs, document.DefaultChunkConfig(), 1)
	if err != nil {
		t.Fatalf("FromDocuments: %v", err)
	}
	if len(seeds) != 1 {
		t.Fatalf("seeds = %d, want 1", len(seeds))
	}
	if seeds[0].ReferenceText != "Leaves use sunlight to make sugar from water and air." {
		t.Errorf("reference = %q", seeds[0].ReferenceText)
	}

	user := mock.Calls[0].Messages[0].Content
	water, plants := strings.Index(user, "Water boils"), strings.Index(user, "Leaves use")
	if water < 0 || plants < 0 || water > plants {
		t.Errorf("documents not sent in order: %q", user)
	}
}
