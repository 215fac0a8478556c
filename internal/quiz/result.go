package quiz

import (
	"time"

	"github.com/google/uuid"
)

// GradingMethod names the grading path that decided an answer.
type GradingMethod string

const (
	MethodUnanswered       GradingMethod = "unanswered"
	MethodLetter           GradingMethod = "letter"
	MethodBoolean          GradingMethod = "boolean"
	MethodFuzzy            GradingMethod = "fuzzy"
	MethodSemantic         GradingMethod = "semantic"
	MethodSemanticFallback GradingMethod = "semantic-fallback"
	MethodExact            GradingMethod = "exact"
)

// EvaluatedAnswer is the grading outcome for one question.
type EvaluatedAnswer struct {
	QuestionID    string        `json:"questionId"`
	UserAnswer    Answer        `json:"userAnswer"`
	CorrectAnswer Answer        `json:"correctAnswer"`
	IsCorrect     bool          `json:"isCorrect"`
	Method        GradingMethod `json:"method,omitempty"`
}

// Evaluation is the outcome of grading a full question set. Answers holds
// exactly one entry per question, in question order.
type Evaluation struct {
	Score   int               `json:"score"`
	Answers []EvaluatedAnswer `json:"results"`
}

// CorrectCount returns the number of correct answers.
func (e *Evaluation) CorrectCount() int {
	n := 0
	for _, a := range e.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// QuizResult is one graded quiz attempt. It is append-only: created once
// and never mutated. Questions is an owned snapshot of the quiz at grading
// time, so grading and analytics stay reproducible after the source quiz
// changes or disappears.
type QuizResult struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	QuizID       string            `json:"quizId"`
	Score        int               `json:"score"`
	TotalPoints  int               `json:"totalPoints"`
	CorrectCount int               `json:"correctCount"`
	Answers      []EvaluatedAnswer `json:"answers"`
	Questions    []Question        `json:"questions"`
	CompletedAt  time.Time         `json:"completedAt"`

	// TimeSpent is the attempt duration in seconds.
	TimeSpent int `json:"timeSpent"`
}

// NewResult builds a QuizResult from a graded attempt. The quiz's
// questions are deep-copied into the result.
func NewResult(userID string, q *Quiz, eval *Evaluation, completedAt time.Time, timeSpent int) *QuizResult {
	answers := make([]EvaluatedAnswer, len(eval.Answers))
	for i, a := range eval.Answers {
		a.UserAnswer = a.UserAnswer.Clone()
		a.CorrectAnswer = a.CorrectAnswer.Clone()
		answers[i] = a
	}
	return &QuizResult{
		ID:           uuid.NewString(),
		UserID:       userID,
		QuizID:       q.ID,
		Score:        eval.Score,
		TotalPoints:  len(q.Questions),
		CorrectCount: eval.CorrectCount(),
		Answers:      answers,
		Questions:    CloneQuestions(q.Questions),
		CompletedAt:  completedAt.UTC(),
		TimeSpent:    timeSpent,
	}
}

// QuestionIndex maps question id to the snapshotted question.
func (r *QuizResult) QuestionIndex() map[string]*Question {
	idx := make(map[string]*Question, len(r.Questions))
	for i := range r.Questions {
		idx[r.Questions[i].ID] = &r.Questions[i]
	}
	return idx
}
