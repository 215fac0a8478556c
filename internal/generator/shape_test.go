package generator

import (
	"testing"

	"github.com/abhisek/quizlab/internal/quiz"
)

func TestResolveOption(t *testing.T) {
	opts := labelOptions([]string{"a) Paris", "B. Berlin", "(C) Roma", "Madrid"})
	want := []string{"A) Paris", "B) Berlin", "C) Roma", "D) Madrid"}
	for i := range want {
		if opts[i] != want[i] {
			t.Fatalf("labelOptions = %v, want %v", opts, want)
		}
	}

	tests := []struct {
		answer string
		want   string
	}{
		{"B", "B) Berlin"},
		{"c", "C) Roma"},
		{"D) Madrid", "D) Madrid"},
		{"paris", "A) Paris"},
		{"B) Wrong text", "B) Berlin"},
		{"Lisbon", "Lisbon"},
	}
	for _, tt := range tests {
		if got := resolveOption(tt.answer, opts); got != tt.want {
			t.Errorf("resolveOption(%q) = %q, want %q", tt.answer, got, tt.want)
		}
	}
}

func TestShapeQuestionRejects(t *testing.T) {
	req := Request{Topic: "x", QuestionCount: 1, Format: quiz.FormatMixed, Difficulty: quiz.DifficultyMedium}
	validators := DefaultConfig().Validators

	tests := []struct {
		name string
		raw  rawQuestion
	}{
		{"empty text", rawQuestion{Type: "multiple_choice", Options: []string{"a", "b"}, CorrectAnswer: "A"}},
		{"one option", rawQuestion{Text: "q", Type: "multiple_choice", Options: []string{"a"}, CorrectAnswer: "A"}},
		{"five options", rawQuestion{Text: "q", Type: "multiple_choice", Options: []string{"a", "b", "c", "d", "e"}, CorrectAnswer: "A"}},
		{"answer not an option", rawQuestion{Text: "q", Type: "multiple_choice", Options: []string{"a", "b"}, CorrectAnswer: "zzz"}},
		{"empty answer", rawQuestion{Text: "q", Type: "multiple_choice", Options: []string{"a", "b"}}},
		{"wrong type", rawQuestion{Text: "q", Type: "open_ended", CorrectAnswer: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := shapeQuestions([]rawQuestion{tt.raw}, req, validators); err == nil {
				t.Fatal("expected shape error")
			}
		})
	}
}

func TestShapeTrueFalse(t *testing.T) {
	req := Request{Topic: "x", QuestionCount: 2, Format: quiz.FormatMixed, Difficulty: quiz.DifficultyMedium}
	raws := []rawQuestion{
		{Text: "q", Type: "multiple_choice", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{Text: "Dünya yuvarlaktır.", Type: "true_false", CorrectAnswer: "Doğru"},
	}
	qs, err := shapeQuestions(raws, req, DefaultConfig().Validators)
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := qs[1].CorrectAnswer.AsBool(); !ok || !b {
		t.Errorf("answer = %v, want true", qs[1].CorrectAnswer.Value())
	}

	raws[1].CorrectAnswer = "maybe"
	if _, err := shapeQuestions(raws, req, DefaultConfig().Validators); err == nil {
		t.Error("expected a non-boolean true_false answer to be rejected")
	}
}

func TestAcceptedAnswers(t *testing.T) {
	a := acceptedAnswers("veritabanı", []string{"veri tabanı", "veritabanı", " "})
	if !a.IsList() {
		t.Fatalf("expected list answer, got %v", a.Value())
	}
	got := a.Candidates()
	if len(got) != 2 || got[0] != "veritabanı" || got[1] != "veri tabanı" {
		t.Errorf("candidates = %v", got)
	}
	if acceptedAnswers("tek", nil).IsList() {
		t.Error("single answer should not be a list")
	}
}
