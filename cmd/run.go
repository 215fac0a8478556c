package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizlab/internal/analytics"
	"github.com/abhisek/quizlab/internal/config"
	"github.com/abhisek/quizlab/internal/events"
	"github.com/abhisek/quizlab/internal/generator"
	"github.com/abhisek/quizlab/internal/grading"
	"github.com/abhisek/quizlab/internal/llm"
	"github.com/abhisek/quizlab/internal/logger"
	"github.com/abhisek/quizlab/internal/pipeline"
	"github.com/abhisek/quizlab/internal/store"
)

// app holds the dependencies shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    store.Store
	provider llm.Provider // nil when no LLM is configured
}

// openApp loads config, opens the store and builds the LLM provider.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{cfg: cfg, logger: log, store: st}
	if cfg.LLM.Provider == "" {
		fmt.Fprintln(os.Stderr, "LLM provider not configured: quizzes fall back to placeholder questions.")
		return a, nil
	}
	a.provider, err = llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *app) generator() *generator.Generator {
	return generator.New(a.provider, a.cfg.Generator, a.logger)
}

func (a *app) evaluator() *grading.Evaluator {
	var judge grading.SemanticJudge
	if a.provider != nil {
		judge = grading.NewLLMJudge(a.provider)
	}
	return grading.NewEvaluator(a.cfg.Grading, judge, a.logger)
}

func (a *app) analytics() *analytics.Service {
	return analytics.NewService(a.store.ResultRepo(), a.store.ReportRepo(), a.provider, a.cfg.Analytics, a.logger)
}

// pipeline wires the generate and submit flows. A nil publisher drops
// result events.
func (a *app) pipeline(svc *analytics.Service, pub events.Publisher, cfg pipeline.Config) *pipeline.Pipeline {
	return pipeline.New(pipeline.Deps{
		Quizzes:   a.store.QuizRepo(),
		Results:   a.store.ResultRepo(),
		Generator: a.generator(),
		Evaluator: a.evaluator(),
		Analytics: svc,
		Publisher: pub,
		Logger:    a.logger,
	}, cfg)
}

// publisher connects to the configured AMQP exchange, or drops events
// when none is configured.
func (a *app) publisher() (events.Publisher, error) {
	if a.cfg.AMQP.URL == "" {
		return events.NopPublisher{}, nil
	}
	p, err := events.NewAMQPPublisher(a.cfg.AMQP.URL, a.cfg.AMQP.Exchange, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect event publisher: %w", err)
	}
	return p, nil
}
