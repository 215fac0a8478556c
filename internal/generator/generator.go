package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/quizlab/internal/llm"
	"github.com/abhisek/quizlab/internal/quiz"
)

// Generator produces quizzes using an LLM provider, falling back to
// synthetic questions when the model fails.
type Generator struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Generator. A nil provider always uses the synthetic
// generator.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Generator {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = def.MaxQuestions
	}
	if cfg.Validators == nil {
		cfg.Validators = def.Validators
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		provider: provider,
		config:   cfg,
		logger:   logger.Named("generator"),
		now:      time.Now,
	}
}

// Generate validates req and produces a quiz. Invalid requests return a
// *quiz.ValidationError. Model failures never surface: the synthetic
// generator fills in and Result.UsedFallback is set. Only cancellation of
// ctx itself is returned as an error.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	req, err := req.normalize(g.config.MaxQuestions)
	if err != nil {
		return nil, err
	}

	questions, err := g.fromModel(ctx, req)
	usedFallback := false
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.logger.Warn("question generation failed, using synthetic questions",
			zap.String("topic", req.Topic),
			zap.Int("count", req.QuestionCount),
			zap.Bool("malformed", llm.IsMalformed(err)),
			zap.Error(err))
		questions = Synthetic(req)
		usedFallback = true
	}

	return &Result{
		Quiz: &quiz.Quiz{
			ID:           uuid.NewString(),
			Topic:        req.Topic,
			Questions:    questions,
			Format:       req.Format,
			Difficulty:   req.Difficulty,
			TimeLimit:    req.TimeLimit,
			CourseRef:    req.CourseRef,
			UsedFallback: usedFallback,
			CreatedAt:    g.now().UTC(),
		},
		UsedFallback: usedFallback,
	}, nil
}

var errNoProvider = &llm.ErrProviderUnavailable{Err: errors.New("no LLM provider configured")}

func (g *Generator) fromModel(ctx context.Context, req Request) ([]quiz.Question, error) {
	if g.provider == nil {
		return nil, errNoProvider
	}

	userMsg, err := buildUserMessage(req, g.config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, llm.PurposeQuestionGen), g.config.Timeout)
	defer cancel()

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      QuestionsSchema,
		MaxTokens:   g.config.maxTokens(req.QuestionCount),
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var out questionsOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("parse questions: %w", err)}
	}
	questions, err := shapeQuestions(out.Questions, req, g.config.Validators)
	if err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return questions, nil
}
