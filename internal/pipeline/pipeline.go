// Package pipeline wires quiz generation, grading, persistence and the
// asynchronous analytics refresh into one ordered flow.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizlab/internal/events"
	"github.com/abhisek/quizlab/internal/generator"
	"github.com/abhisek/quizlab/internal/quiz"
	"github.com/abhisek/quizlab/internal/store"
)

// QuizGenerator produces quizzes.
type QuizGenerator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
}

// Evaluator grades submissions.
type Evaluator interface {
	Evaluate(ctx context.Context, questions []quiz.Question, subs quiz.Submissions) (*quiz.Evaluation, error)
}

// Analyzer refreshes and invalidates learner reports.
type Analyzer interface {
	Analyze(ctx context.Context, userID string) (*quiz.AnalysisReport, error)
	Invalidate(userID string)
}

// Config controls the analytics refresh worker.
type Config struct {
	// QueueSize bounds pending refresh jobs; a full queue drops new jobs.
	QueueSize int `mapstructure:"queue_size"`

	// RefreshTimeout bounds one background analysis.
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`

	// InProcessRefresh runs the refresh worker inside this process. Turn
	// it off when a separate `quizlab worker` consumes result events.
	InProcessRefresh bool `mapstructure:"in_process_refresh"`
}

// DefaultConfig returns the default worker settings.
func DefaultConfig() Config {
	return Config{
		QueueSize:        64,
		RefreshTimeout:   time.Minute,
		InProcessRefresh: true,
	}
}

// Deps are the collaborators of a Pipeline. Publisher and Logger may be
// nil.
type Deps struct {
	Quizzes   store.QuizRepo
	Results   store.ResultRepo
	Generator QuizGenerator
	Evaluator Evaluator
	Analytics Analyzer
	Publisher events.Publisher
	Logger    *zap.Logger
}

// Pipeline runs Generate and Submit.
type Pipeline struct {
	Deps
	cfg Config
	now func() time.Time

	mu     sync.RWMutex
	closed bool
	jobs   chan string
	wg     sync.WaitGroup
}

// New creates a Pipeline and starts its refresh worker.
func New(deps Deps, cfg Config) *Pipeline {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultConfig().RefreshTimeout
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Logger = deps.Logger.Named("pipeline")

	p := &Pipeline{Deps: deps, cfg: cfg, now: time.Now}
	if cfg.InProcessRefresh {
		p.jobs = make(chan string, cfg.QueueSize)
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Generate produces a quiz and stores it.
func (p *Pipeline) Generate(ctx context.Context, req generator.Request) (*generator.Result, error) {
	res, err := p.Generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.Quizzes.SaveQuiz(ctx, res.Quiz); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	p.Logger.Info("quiz generated",
		zap.String("quiz_id", res.Quiz.ID),
		zap.Int("questions", len(res.Quiz.Questions)),
		zap.Bool("used_fallback", res.UsedFallback))
	return res, nil
}

// SubmitRequest is one learner attempt at a stored quiz.
type SubmitRequest struct {
	UserID      string           `json:"userId"`
	QuizID      string           `json:"quizId"`
	Submissions quiz.Submissions `json:"submissions"`

	// TimeSpent is in seconds.
	TimeSpent int `json:"timeSpent"`
}

// Submit grades an attempt and stores the result. Once the result is
// stored the call succeeds: the cache is invalidated, an event is
// published and an analytics refresh is queued, none of which can fail
// the submission.
func (p *Pipeline) Submit(ctx context.Context, req SubmitRequest) (*quiz.QuizResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return nil, quiz.Invalid("userId", "user id is required")
	}
	if req.QuizID == "" {
		return nil, quiz.Invalid("quizId", "quiz id is required")
	}
	if req.TimeSpent < 0 {
		return nil, quiz.Invalid("timeSpent", "must not be negative")
	}

	q, err := p.Quizzes.GetQuiz(ctx, req.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz %s: %w", req.QuizID, err)
	}

	eval, err := p.Evaluator.Evaluate(ctx, q.Questions, req.Submissions)
	if err != nil {
		return nil, err
	}

	result := quiz.NewResult(req.UserID, q, eval, p.now().UTC(), req.TimeSpent)
	if err := p.Results.AppendResult(ctx, result); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	p.Analytics.Invalidate(req.UserID)

	payload := events.ResultCreated{
		ResultID:    result.ID,
		UserID:      result.UserID,
		QuizID:      result.QuizID,
		Score:       result.Score,
		CompletedAt: result.CompletedAt,
	}
	if err := p.Publisher.Publish(ctx, events.TypeResultCreated, payload); err != nil {
		p.Logger.Warn("publish result event failed",
			zap.String("result_id", result.ID), zap.Error(err))
	}

	p.enqueueRefresh(req.UserID)
	return result, nil
}

// enqueueRefresh queues an analytics refresh without blocking.
func (p *Pipeline) enqueueRefresh(userID string) {
	if p.jobs == nil {
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.jobs <- userID:
	default:
		p.Logger.Warn("analytics queue full, dropping refresh", zap.String("user_id", userID))
	}
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for userID := range p.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.RefreshTimeout)
		if _, err := p.Analytics.Analyze(ctx, userID); err != nil {
			p.Logger.Warn("analytics refresh failed", zap.String("user_id", userID), zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting refresh jobs and waits for queued ones to finish.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.jobs != nil {
		close(p.jobs)
	}
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}
