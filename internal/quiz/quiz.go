package quiz

import (
	"bytes"
	"encoding/json"
	"time"
)

// Question is a single generated quiz question. Questions are immutable
// once generated and owned by the quiz they belong to.
type Question struct {
	ID   string       `json:"id"`
	Text string       `json:"text"`
	Type QuestionType `json:"type"`

	// Options is set for multiple_choice only, in display order. Each
	// option carries its letter prefix, e.g. "B) Paris".
	Options []string `json:"options,omitempty"`

	// CorrectAnswer is the canonical answer: an option for multiple_choice,
	// a boolean for true_false, one or more accepted strings otherwise.
	CorrectAnswer Answer `json:"correctAnswer"`

	Explanation string     `json:"explanation,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	Topic       string     `json:"topic,omitempty"`
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = make([]string, len(q.Options))
		copy(c.Options, q.Options)
	}
	c.CorrectAnswer = q.CorrectAnswer.Clone()
	return c
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// Quiz is a generated set of questions. It is created once by the
// generator and never mutated.
type Quiz struct {
	ID         string     `json:"id"`
	Topic      string     `json:"topic"`
	Questions  []Question `json:"questions"`
	Format     Format     `json:"format"`
	Difficulty Difficulty `json:"difficulty"`

	// TimeLimit is the time allowed for the attempt, in minutes.
	TimeLimit int    `json:"timeLimit"`
	CourseRef string `json:"courseRef,omitempty"`

	// UsedFallback is set when the questions came from the synthetic
	// generator instead of the model.
	UsedFallback bool      `json:"usedFallback"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Submission is one learner answer for one question.
type Submission struct {
	QuestionID string `json:"questionId"`
	UserAnswer Answer `json:"userAnswer"`
}

// Submissions maps question id to the learner's answer. A missing entry
// means the question was left unanswered.
type Submissions map[string]Answer

// FromList builds Submissions from a list. Later entries for the same
// question win.
func FromList(list []Submission) Submissions {
	out := make(Submissions, len(list))
	for _, s := range list {
		out[s.QuestionID] = s.UserAnswer
	}
	return out
}

// UnmarshalJSON accepts either {"q1": "A"} or
// [{"questionId": "q1", "userAnswer": "A"}].
func (s *Submissions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []Submission
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = FromList(list)
		return nil
	}
	var m map[string]Answer
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = m
	return nil
}
