package generator

import (
	"fmt"
	"unicode/utf8"

	"github.com/abhisek/quizlab/internal/quiz"
)

const maxQuestionChars = 1000

// StructuralValidator checks that the text is present and the type is the
// one required for the question's position.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *quiz.Question, want quiz.QuestionType) *ShapeError {
	if q.Text == "" {
		return &ShapeError{Validator: v.Name(), Message: "text is empty"}
	}
	if utf8.RuneCountInString(q.Text) > maxQuestionChars {
		return &ShapeError{Validator: v.Name(), Message: fmt.Sprintf("text exceeds %d characters", maxQuestionChars)}
	}
	if q.Type.Canonical() != want.Canonical() {
		return &ShapeError{Validator: v.Name(), Message: fmt.Sprintf("type %q, want %q", q.Type, want)}
	}
	return nil
}

// AnswerValidator checks that the canonical answer has the shape its type
// needs.
type AnswerValidator struct{}

func (v *AnswerValidator) Name() string { return "answer" }

func (v *AnswerValidator) Validate(q *quiz.Question, _ quiz.QuestionType) *ShapeError {
	fail := func(format string, args ...any) *ShapeError {
		return &ShapeError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
	}
	if q.CorrectAnswer.IsZero() {
		return fail("correct answer is empty")
	}

	switch q.Type.Canonical() {
	case quiz.TypeMultipleChoice:
		if len(q.Options) < 2 || len(q.Options) > len(optionLetters) {
			return fail("multiple_choice needs 2 to %d options, got %d", len(optionLetters), len(q.Options))
		}
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer.String() {
				return nil
			}
		}
		return fail("correct answer %q is not one of the options", q.CorrectAnswer.String())
	case quiz.TypeTrueFalse:
		if _, ok := q.CorrectAnswer.AsBool(); !ok {
			return fail("true_false answer %q is not a boolean", q.CorrectAnswer.String())
		}
	}
	return nil
}
