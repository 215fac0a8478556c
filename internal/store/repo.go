package store

import (
	"context"
	"time"

	"github.com/abhisek/quizlab/internal/quiz"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match when set
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// QuizRepo persists generated quizzes.
type QuizRepo interface {
	// SaveQuiz inserts or replaces a quiz by id.
	SaveQuiz(ctx context.Context, q *quiz.Quiz) error

	// GetQuiz returns quiz.ErrQuizNotFound when id does not resolve.
	GetQuiz(ctx context.Context, id string) (*quiz.Quiz, error)
}

// ResultRepo is the append-only log of graded attempts.
type ResultRepo interface {
	AppendResult(ctx context.Context, r *quiz.QuizResult) error

	// ResultsByUser returns a user's results ordered by completion time,
	// oldest first.
	ResultsByUser(ctx context.Context, userID string) ([]*quiz.QuizResult, error)
}

// ReportRepo is the append-only log of analysis reports.
type ReportRepo interface {
	AppendReport(ctx context.Context, r *quiz.AnalysisReport) error

	// LatestReport returns the newest report for a user, or nil if none.
	LatestReport(ctx context.Context, userID string) (*quiz.AnalysisReport, error)

	// ReportHistory returns up to limit reports, newest first.
	ReportHistory(ctx context.Context, userID string, limit int) ([]*quiz.AnalysisReport, error)
}

// LLMRequestEventData captures a single LLM call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM call. ID is its global sequence number.
type LLMEventRecord struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM call events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns nil when id does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// Store bundles the repositories of one backend.
type Store interface {
	QuizRepo() QuizRepo
	ResultRepo() ResultRepo
	ReportRepo() ReportRepo
	EventRepo() EventRepo
	Close() error
}
