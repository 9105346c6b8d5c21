package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"llm_request_events", "answer_events", "session_events", "points_events", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.seq.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	seq, err := s.seq.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if seq != 2 {
		t.Errorf("seq after reopen = %d, want 2", seq)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "mock", Model: "m1", Purpose: "grade", SessionID: "s1", InputTokens: 10, OutputTokens: 2, LatencyMs: 100, Success: true, RequestBody: "req", ResponseBody: "Correct"},
		{Provider: "mock", Model: "m1", Purpose: "grade", InputTokens: 20, OutputTokens: 4, LatencyMs: 300, Success: true},
		{Provider: "mock", Model: "m2", Purpose: "hint", InputTokens: 5, OutputTokens: 1, LatencyMs: 50, Success: false, ErrorMessage: "boom"},
	}
	for _, ev := range events {
		if err := repo.AppendLLMRequest(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Purpose != "hint" || got[0].Success || got[0].ErrorMessage != "boom" {
		t.Errorf("newest event = %+v", got[0])
	}
	if got[0].Sequence <= got[1].Sequence {
		t.Errorf("events not newest first: %d then %d", got[0].Sequence, got[1].Sequence)
	}
	if time.Since(got[0].Timestamp) > time.Minute {
		t.Errorf("timestamp %v not recent", got[0].Timestamp)
	}

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: got[1].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 1 || after[0].ID != got[0].ID {
		t.Errorf("after filter returned %+v", after)
	}

	grades, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "grade", Limit: 5})
	if err != nil {
		t.Fatalf("query purpose: %v", err)
	}
	if len(grades) != 2 || grades[0].Purpose != "grade" || grades[1].Purpose != "grade" {
		t.Errorf("purpose filter returned %+v", grades)
	}

	forSession, err := repo.QueryLLMEvents(ctx, QueryOpts{SessionID: "s1"})
	if err != nil {
		t.Fatalf("query session: %v", err)
	}
	if len(forSession) != 1 || forSession[0].SessionID != "s1" || forSession[0].ResponseBody != "Correct" {
		t.Errorf("session filter returned %+v", forSession)
	}

	all, _ := repo.QueryLLMEvents(ctx, QueryOpts{})
	first, err := repo.GetLLMEvent(ctx, all[len(all)-1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first.RequestBody != "req" || first.ResponseBody != "Correct" || !first.Success {
		t.Errorf("first event = %+v", first)
	}

	if _, err := repo.GetLLMEvent(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing event err = %v, want ErrNotFound", err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	grade := byPurpose[0]
	if grade.Purpose != "grade" || grade.Calls != 2 || grade.InputTokens != 30 || grade.OutputTokens != 6 || grade.AvgLatencyMs != 200 {
		t.Errorf("grade usage = %+v", grade)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "m1" || byModel[0].Calls != 2 {
		t.Errorf("model usage = %+v", byModel)
	}
}

func TestAnswerAndSessionEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendSession(ctx, SessionEventData{SessionID: "s1", Action: SessionStarted, CoreQuestions: 2}); err != nil {
		t.Fatalf("append session: %v", err)
	}
	answers := []AnswerEventData{
		{SessionID: "s1", NodeID: 0, Kind: "basic", Question: "Q1?", Answer: "a", Category: "partial", Feedback: "f", Attempt: 1, RefinementsCreated: 2},
		{SessionID: "s1", NodeID: 2, Kind: "refinement", Question: "R1?", Answer: "b", Category: "correct", Feedback: "g", Attempt: 1},
		{SessionID: "s2", NodeID: 0, Kind: "basic", Question: "Other?", Answer: "c", Category: "perfect", Feedback: "h", Attempt: 1},
	}
	for _, a := range answers {
		if err := repo.AppendAnswer(ctx, a); err != nil {
			t.Fatalf("append answer: %v", err)
		}
	}
	if err := repo.AppendSession(ctx, SessionEventData{SessionID: "s1", Action: SessionFinished, Summary: "<h1>ok</h1>"}); err != nil {
		t.Fatalf("append session: %v", err)
	}

	got, err := repo.AnswersForSession(ctx, "s1")
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("answers = %d, want 2", len(got))
	}
	if got[0].Question != "Q1?" || got[0].RefinementsCreated != 2 || got[1].Kind != "refinement" {
		t.Errorf("answers = %+v", got)
	}

	actions, err := repo.SessionActions(ctx, "s1")
	if err != nil {
		t.Fatalf("actions: %v", err)
	}
	if len(actions) != 2 || actions[0] != SessionStarted || actions[1] != SessionFinished {
		t.Errorf("actions = %v", actions)
	}
}

func TestCourseStandings(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	awards := []PointsEventData{
		{CourseID: "c1", UserID: "u1", UserName: "Ana", Points: 10, Reason: "perfect"},
		{CourseID: "c1", UserID: "u2", UserName: "Ben", Points: 5, Reason: "correct"},
		{CourseID: "c1", UserID: "u1", UserName: "Ana", Points: 3, Reason: "refinements"},
		{CourseID: "c1", UserID: "u2", UserName: "Ben", Points: 60, Reason: "completion"},
		{CourseID: "c2", UserID: "u1", UserName: "Ana", Points: 100, Reason: "completion"},
	}
	for _, a := range awards {
		if err := repo.AppendPoints(ctx, a); err != nil {
			t.Fatalf("append points: %v", err)
		}
	}

	got, err := repo.CourseStandings(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	want := []CourseStanding{
		{UserID: "u2", UserName: "Ben", Points: 65},
		{UserID: "u1", UserName: "Ana", Points: 13},
	}
	if len(got) != len(want) {
		t.Fatalf("standings = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("standing[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	top, err := repo.CourseStandings(ctx, "c1", 1)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(top) != 1 || top[0].UserID != "u2" {
		t.Errorf("top = %+v", top)
	}

	none, err := repo.CourseStandings(ctx, "missing", 5)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no standings, got %+v", none)
	}
}
