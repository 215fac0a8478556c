package quiz

import "time"

// WeakArea is a topic ranked by how often the learner got it wrong.
type WeakArea struct {
	Topic      string `json:"topic"`
	ErrorCount int    `json:"errorCount"`
}

// WeekBucket aggregates the results completed in one trailing 7-day
// window. WeekIndex 0 is the most recent window.
type WeekBucket struct {
	WeekIndex int       `json:"weekIndex"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	AvgScore  float64   `json:"avgScore"`
	QuizCount int       `json:"quizCount"`
}

// AnalysisReport is the learner's trend and weakness analysis. Reports are
// appended, never updated; the most recent one per user is authoritative.
type AnalysisReport struct {
	UserID         string       `json:"userId"`
	Message        string       `json:"message"`
	WeakAreas      []WeakArea   `json:"weakAreas"`
	WeeklyProgress []WeekBucket `json:"weeklyProgress"`
	TotalQuizzes   int          `json:"totalQuizzes"`
	AverageScore   int          `json:"averageScore"`

	// Degraded is set when the coaching message could not be produced and
	// Message holds the generic fallback text.
	Degraded  bool      `json:"degraded"`
	CreatedAt time.Time `json:"createdAt"`
}
