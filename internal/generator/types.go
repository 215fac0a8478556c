package generator

import (
	"strings"

	"github.com/abhisek/quizlab/internal/quiz"
)

// Request describes the quiz to generate.
type Request struct {
	Topic         string          `json:"topic"`
	Difficulty    quiz.Difficulty `json:"difficulty"`
	QuestionCount int             `json:"questionCount"`

	// TimeLimit is in minutes; zero means untimed.
	TimeLimit int         `json:"timeLimit"`
	Format    quiz.Format `json:"examFormat"`

	// SourceText is optional course material the questions must be
	// grounded in.
	SourceText string `json:"sourceText,omitempty"`
	CourseRef  string `json:"courseRef,omitempty"`
}

// Result is a generated quiz and whether it came from the synthetic
// generator.
type Result struct {
	Quiz         *quiz.Quiz `json:"quiz"`
	UsedFallback bool       `json:"usedFallback"`
}

// normalize validates r and fills in defaults.
func (r Request) normalize(maxQuestions int) (Request, error) {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return r, quiz.Invalid("topic", "topic is required")
	}
	if r.QuestionCount < 1 {
		return r, quiz.Invalid("questionCount", "must be at least 1, got %d", r.QuestionCount)
	}
	if maxQuestions > 0 && r.QuestionCount > maxQuestions {
		return r, quiz.Invalid("questionCount", "must be at most %d, got %d", maxQuestions, r.QuestionCount)
	}
	if r.TimeLimit < 0 {
		return r, quiz.Invalid("timeLimit", "must not be negative")
	}

	d, err := quiz.ParseDifficulty(string(r.Difficulty))
	if err != nil {
		return r, err
	}
	r.Difficulty = d

	f, err := quiz.ParseFormat(string(r.Format))
	if err != nil {
		return r, err
	}
	r.Format = f
	return r, nil
}
