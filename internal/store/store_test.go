package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizlab/internal/quiz"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	s, err := OpenSQLite(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleQuiz(id string) *quiz.Quiz {
	return &quiz.Quiz{
		ID:     id,
		Topic:  "Fractions",
		Format: quiz.FormatMixed,
		Questions: []quiz.Question{
			{ID: "q1", Text: "Pick one", Type: quiz.TypeMultipleChoice, Options: []string{"A) 1/2", "B) 1/3"}, CorrectAnswer: quiz.Text("A) 1/2"), Topic: "Halves"},
			{ID: "q2", Text: "1/2 > 1/3", Type: quiz.TypeTrueFalse, CorrectAnswer: quiz.Bool(true), Topic: "Ordering"},
			{ID: "q3", Text: "Name the top number", Type: quiz.TypeFillInBlank, CorrectAnswer: quiz.List("numerator", "pay"), Topic: "Terms"},
		},
		Difficulty: quiz.DifficultyMedium,
		CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode reports "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		var got string
		if err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
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
	for _, table := range []string{"quizzes", "quiz_results", "analysis_reports", "llm_events", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if _, err := newSQLStore(context.Background(), s.DB(), "sqlite"); err != nil {
		t.Fatalf("second migration: %v", err)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if seq != int64(i) {
			t.Errorf("seq = %d, want %d", seq, i)
		}
	}
}

func TestQuizSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuizRepo()
	ctx := context.Background()

	q := sampleQuiz("quiz-1")
	if err := repo.SaveQuiz(ctx, q); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Topic != "Fractions" || len(got.Questions) != 3 {
		t.Fatalf("unexpected quiz: %+v", got)
	}
	if b, ok := got.Questions[1].CorrectAnswer.AsBool(); !ok || !b {
		t.Errorf("true/false answer did not survive storage: %v", got.Questions[1].CorrectAnswer)
	}
	if !got.Questions[2].CorrectAnswer.Equal(quiz.List("numerator", "pay")) {
		t.Errorf("list answer did not survive storage: %v", got.Questions[2].CorrectAnswer.Value())
	}
	if !got.CreatedAt.Equal(q.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, q.CreatedAt)
	}
}

func TestQuizSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuizRepo()
	ctx := context.Background()

	q := sampleQuiz("quiz-1")
	if err := repo.SaveQuiz(ctx, q); err != nil {
		t.Fatalf("save: %v", err)
	}
	q.Topic = "Decimals"
	if err := repo.SaveQuiz(ctx, q); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := repo.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Topic != "Decimals" {
		t.Errorf("topic = %q, want Decimals", got.Topic)
	}
}

func TestGetQuizNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.QuizRepo().GetQuiz(context.Background(), "missing")
	if !errors.Is(err, quiz.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestResultsByUserOrderedByCompletion(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()
	q := sampleQuiz("quiz-1")
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Appended out of order on purpose.
	for _, offset := range []int{3, 1, 2} {
		eval := &quiz.Evaluation{Score: offset * 10, Answers: []quiz.EvaluatedAnswer{
			{QuestionID: "q1", UserAnswer: quiz.Text("A"), CorrectAnswer: quiz.Text("A) 1/2"), IsCorrect: true},
		}}
		res := quiz.NewResult("u1", q, eval, base.Add(time.Duration(offset)*time.Hour), 60)
		if err := repo.AppendResult(ctx, res); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	other := quiz.NewResult("u2", q, &quiz.Evaluation{Score: 99}, base, 5)
	if err := repo.AppendResult(ctx, other); err != nil {
		t.Fatalf("append other: %v", err)
	}

	got, err := repo.ResultsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	for i, want := range []int{10, 20, 30} {
		if got[i].Score != want {
			t.Errorf("result[%d].Score = %d, want %d", i, got[i].Score, want)
		}
	}
	if len(got[0].Questions) != 3 || got[0].Questions[0].Topic != "Halves" {
		t.Errorf("question snapshot not stored: %+v", got[0].Questions)
	}
}

func TestResultsByUserEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.ResultRepo().ResultsByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

func TestReportLatestAndHistory(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReportRepo()
	ctx := context.Background()

	latest, err := repo.LatestReport(ctx, "u1")
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if latest != nil {
		t.Fatal("expected nil report when none exist")
	}

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		err := repo.AppendReport(ctx, &quiz.AnalysisReport{
			UserID:    "u1",
			Message:   msg,
			WeakAreas: []quiz.WeakArea{{Topic: "Halves", ErrorCount: i + 1}},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %s: %v", msg, err)
		}
	}

	latest, err = repo.LatestReport(ctx, "u1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Message != "third" || latest.WeakAreas[0].ErrorCount != 3 {
		t.Fatalf("unexpected latest report: %+v", latest)
	}

	history, err := repo.ReportHistory(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Message != "third" || history[1].Message != "second" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestReportSameTimestampUsesSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReportRepo()
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, msg := range []string{"older", "newer"} {
		if err := repo.AppendReport(ctx, &quiz.AnalysisReport{UserID: "u1", Message: msg, CreatedAt: at}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	latest, err := repo.LatestReport(ctx, "u1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Message != "newer" {
		t.Errorf("latest = %q, want newer", latest.Message)
	}
}

func TestLLMEventsAppendQueryAndUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "mock", Model: "gpt-4o-mini", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "mock", Model: "gpt-4o-mini", Purpose: "answer-check", InputTokens: 10, OutputTokens: 1, LatencyMs: 40, Success: true},
		{Provider: "mock", Model: "gemini-2.0-flash", Purpose: "answer-check", InputTokens: 20, OutputTokens: 3, LatencyMs: 60, Success: false, ErrorMessage: "timeout"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].ID <= all[1].ID {
		t.Errorf("events not newest first: %d then %d", all[0].ID, all[1].ID)
	}

	checks, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "answer-check", Limit: 1})
	if err != nil {
		t.Fatalf("query purpose: %v", err)
	}
	if len(checks) != 1 || checks[0].ErrorMessage != "timeout" || checks[0].Success {
		t.Fatalf("unexpected filtered events: %+v", checks)
	}

	got, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Purpose != "question-gen" || got.InputTokens != 100 {
		t.Fatalf("unexpected event: %+v", got)
	}
	missing, err := repo.GetLLMEvent(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing event, got %+v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	check := byPurpose[0]
	if check.Purpose != "answer-check" || check.Calls != 2 || check.InputTokens != 30 || check.AvgLatencyMs != 50 {
		t.Errorf("unexpected answer-check usage: %+v", check)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Model != "gpt-4o-mini" || byModel[1].OutputTokens != 51 {
		t.Errorf("unexpected model usage: %+v", byModel)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "cassandra"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
