package generator

import (
	"fmt"

	"github.com/abhisek/quizlab/internal/quiz"
)

// Validator checks a shaped question before it is accepted.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator, e.g. "structural".
	Name() string

	// Validate returns nil if q is acceptable as the question whose
	// position requires type want.
	Validate(q *quiz.Question, want quiz.QuestionType) *ShapeError
}

// ShapeError describes why a model response could not be shaped into a
// quiz. It is always reported wrapped in llm.ErrInvalidResponse.
type ShapeError struct {
	Validator string
	Index     int
	Message   string
}

func (e *ShapeError) Error() string {
	if e.Validator == "" {
		return e.Message
	}
	return fmt.Sprintf("question %d: validator %q: %s", e.Index+1, e.Validator, e.Message)
}
