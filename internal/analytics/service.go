package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizlab/internal/llm"
	"github.com/abhisek/quizlab/internal/quiz"
	"github.com/abhisek/quizlab/internal/store"
)

// Service builds learner analysis reports from the result history.
type Service struct {
	results  store.ResultRepo
	reports  store.ReportRepo
	provider llm.Provider
	cache    *Cache
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates an analysis service. A nil provider produces
// degraded reports.
func NewService(results store.ResultRepo, reports store.ReportRepo, provider llm.Provider, cfg Config, logger *zap.Logger) *Service {
	def := DefaultConfig()
	if cfg.DefaultTopic == "" {
		cfg.DefaultTopic = def.DefaultTopic
	}
	if cfg.CoachTimeout <= 0 {
		cfg.CoachTimeout = def.CoachTimeout
	}
	if cfg.RecentResults <= 0 {
		cfg.RecentResults = def.RecentResults
	}
	if cfg.RecentMistakes <= 0 {
		cfg.RecentMistakes = def.RecentMistakes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		results:  results,
		reports:  reports,
		provider: provider,
		cache:    NewCache(),
		cfg:      cfg,
		logger:   logger.Named("analytics"),
		now:      time.Now,
	}
}

// Cache returns the service's report cache.
func (s *Service) Cache() *Cache { return s.cache }

// Analyze computes a fresh report for userID and appends it to the report
// store. A user without results gets a no-data report that is neither
// stored nor sent to the model. A coaching failure yields a degraded
// report rather than an error.
func (s *Service) Analyze(ctx context.Context, userID string) (*quiz.AnalysisReport, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, quiz.Invalid("userId", "user id is required")
	}

	results, err := s.results.ResultsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}

	now := s.now().UTC()
	r := aggregate(userID, results, now, s.cfg.DefaultTopic)
	r.CreatedAt = now
	if len(results) == 0 {
		r.Message = NoDataMessage
		return r, nil
	}

	msg, err := s.coach(ctx, r, results)
	if err != nil {
		s.logger.Warn("coaching message failed, returning degraded report",
			zap.String("user_id", userID),
			zap.Bool("unavailable", llm.IsUnavailable(err)),
			zap.Error(err))
		msg = DegradedMessage
		r.Degraded = true
	}
	r.Message = msg

	if err := s.reports.AppendReport(ctx, r); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	s.cache.Set(r)
	return r, nil
}

// Latest returns the most recent report for userID. A report is computed
// when none is stored or the stored one predates the user's newest result.
func (s *Service) Latest(ctx context.Context, userID string) (*quiz.AnalysisReport, error) {
	if r, ok := s.cache.Get(userID); ok {
		return r, nil
	}
	r, err := s.reports.LatestReport(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load latest report: %w", err)
	}
	if r == nil {
		return s.Analyze(ctx, userID)
	}

	results, err := s.results.ResultsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	if n := len(results); n > 0 && results[n-1].CompletedAt.After(r.CreatedAt) {
		return s.Analyze(ctx, userID)
	}
	s.cache.Set(r)
	return r, nil
}

// History returns up to limit stored reports, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*quiz.AnalysisReport, error) {
	return s.reports.ReportHistory(ctx, userID, limit)
}

// Invalidate drops the cached report after a new result for userID.
func (s *Service) Invalidate(userID string) {
	s.cache.Invalidate(userID)
}
