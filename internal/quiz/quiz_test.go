package quiz

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAnswer_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		raw       string
		wantStr   string
		wantBool  bool
		isBool    bool
		wantCands int
	}{
		{`"B) Paris"`, "B) Paris", false, false, 1},
		{`true`, "true", true, true, 1},
		{`false`, "false", false, true, 1},
		{`["veritabanı","veri tabanı"]`, "veritabanı", false, false, 2},
		{`42`, "42", false, false, 1},
	}

	for _, tc := range tests {
		var a Answer
		if err := json.Unmarshal([]byte(tc.raw), &a); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if a.String() != tc.wantStr {
			t.Errorf("%s: String() = %q, want %q", tc.raw, a.String(), tc.wantStr)
		}
		b, ok := a.AsBool()
		if ok != tc.isBool || b != tc.wantBool {
			t.Errorf("%s: AsBool() = (%v, %v), want (%v, %v)", tc.raw, b, ok, tc.wantBool, tc.isBool)
		}
		if n := len(a.Candidates()); n != tc.wantCands {
			t.Errorf("%s: %d candidates, want %d", tc.raw, n, tc.wantCands)
		}
	}
}

func TestAnswer_NullIsZero(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`null`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !a.IsZero() {
		t.Fatal("expected null answer to be zero")
	}
	if !Text("   ").IsZero() {
		t.Fatal("expected blank text answer to be zero")
	}
	if Bool(false).IsZero() {
		t.Fatal("a false boolean is a real answer")
	}
}

func TestAnswer_KeepsShapeInJSON(t *testing.T) {
	q := Question{ID: "q1", Type: TypeTrueFalse, CorrectAnswer: Bool(false)}
	b, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Question
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := back.CorrectAnswer.AsBool(); !ok || v {
		t.Fatalf("expected boolean false, got %v", back.CorrectAnswer.Value())
	}
}

func TestFormat_Palette(t *testing.T) {
	if got := FormatTest.Palette(); len(got) != 1 || got[0] != TypeMultipleChoice {
		t.Errorf("test palette = %v", got)
	}
	if got := FormatClassic.Palette(); len(got) != 1 || got[0] != TypeOpenEnded {
		t.Errorf("classic palette = %v", got)
	}

	want := []QuestionType{TypeMultipleChoice, TypeTrueFalse, TypeOpenEnded, TypeMultipleChoice}
	for i, w := range want {
		if got := FormatMixed.TypeFor(i); got != w {
			t.Errorf("mixed TypeFor(%d) = %s, want %s", i, got, w)
		}
	}
	if FormatTest.Allows(TypeTrueFalse) {
		t.Error("test format must not allow true_false")
	}
	if !FormatClassic.Allows(TypeClassic) {
		t.Error("classic format must allow the legacy classic label")
	}
}

func TestParseFormatAndDifficulty(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatMixed {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("essay"); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if d, err := ParseDifficulty(""); err != nil || d != DifficultyMedium {
		t.Errorf("ParseDifficulty(\"\") = %v, %v", d, err)
	}
	if _, err := ParseDifficulty("brutal"); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewResult_SnapshotsQuestions(t *testing.T) {
	qz := &Quiz{
		ID: "quiz-1",
		Questions: []Question{
			{ID: "q1", Type: TypeMultipleChoice, Options: []string{"A) x", "B) y"}, CorrectAnswer: Text("A) x"), Topic: "Sets"},
			{ID: "q2", Type: TypeFillInBlank, CorrectAnswer: List("kedi", "pisik")},
		},
	}
	eval := &Evaluation{
		Score: 50,
		Answers: []EvaluatedAnswer{
			{QuestionID: "q1", UserAnswer: Text("A"), CorrectAnswer: Text("A) x"), IsCorrect: true},
			{QuestionID: "q2", UserAnswer: Text("köpek"), CorrectAnswer: List("kedi", "pisik")},
		},
	}

	r := NewResult("user-1", qz, eval, time.Now(), 90)

	// Mutating the source quiz must not leak into the result.
	qz.Questions[0].Options[0] = "A) changed"
	qz.Questions[0].Topic = "Changed"
	qz.Questions = nil

	if len(r.Questions) != 2 {
		t.Fatalf("expected 2 snapshotted questions, got %d", len(r.Questions))
	}
	if r.Questions[0].Options[0] != "A) x" || r.Questions[0].Topic != "Sets" {
		t.Errorf("snapshot was aliased: %+v", r.Questions[0])
	}
	if r.TotalPoints != 2 || r.CorrectCount != 1 || r.Score != 50 {
		t.Errorf("unexpected totals: points=%d correct=%d score=%d", r.TotalPoints, r.CorrectCount, r.Score)
	}
	if r.ID == "" {
		t.Error("expected generated result id")
	}
	if q := r.QuestionIndex()["q2"]; q == nil || len(q.CorrectAnswer.Candidates()) != 2 {
		t.Errorf("QuestionIndex lookup failed: %+v", q)
	}
}

func TestSubmissions_AcceptsMapAndList(t *testing.T) {
	for _, raw := range []string{
		`{"q1": "B", "q2": true}`,
		`[{"questionId": "q1", "userAnswer": "A"}, {"questionId": "q2", "userAnswer": true}, {"questionId": "q1", "userAnswer": "B"}]`,
	} {
		var s Submissions
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if len(s) != 2 {
			t.Fatalf("%s: got %d entries, want 2", raw, len(s))
		}
		if got := s["q1"].String(); got != "B" {
			t.Errorf("%s: q1 = %q, want B", raw, got)
		}
		if b, ok := s["q2"].AsBool(); !ok || !b {
			t.Errorf("%s: q2 = %v, want true", raw, s["q2"])
		}
	}

	var s Submissions
	if err := json.Unmarshal([]byte(`null`), &s); err != nil || s != nil {
		t.Errorf("null: got %v, %v", s, err)
	}
}
