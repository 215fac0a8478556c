package grading

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizlab/internal/quiz"
)

// Evaluator grades submissions against questions.
type Evaluator struct {
	cfg    Config
	norm   Normalizer
	judge  SemanticJudge
	logger *zap.Logger
}

// NewEvaluator creates an Evaluator. A nil judge makes every open-ended
// answer go straight to the fuzzy fallback.
func NewEvaluator(cfg Config, judge SemanticJudge, logger *zap.Logger) *Evaluator {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if cfg.SemanticTimeout <= 0 {
		cfg.SemanticTimeout = DefaultConfig().SemanticTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		cfg:    cfg,
		norm:   NewNormalizer(cfg.Language),
		judge:  judge,
		logger: logger.Named("grading"),
	}
}

// Evaluate grades every question and returns one EvaluatedAnswer per
// question in question order. A missing submission is graded incorrect.
// Questions are graded concurrently; a failing semantic check affects only
// its own question.
func (e *Evaluator) Evaluate(ctx context.Context, questions []quiz.Question, subs quiz.Submissions) (*quiz.Evaluation, error) {
	if len(questions) == 0 {
		return nil, quiz.Invalid("questions", "at least one question is required")
	}
	if subs == nil {
		return nil, quiz.Invalid("submissions", "submissions are required")
	}

	answers := make([]quiz.EvaluatedAnswer, len(questions))

	var g errgroup.Group
	g.SetLimit(e.cfg.MaxConcurrency)
	for i := range questions {
		q := &questions[i]
		g.Go(func() error {
			answers[i] = e.grade(ctx, q, subs[q.ID])
			return nil
		})
	}
	_ = g.Wait()

	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	return &quiz.Evaluation{
		Score:   Score(correct, len(questions)),
		Answers: answers,
	}, nil
}

// Score is the rounded percentage of correct answers.
func Score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

func (e *Evaluator) grade(ctx context.Context, q *quiz.Question, given quiz.Answer) quiz.EvaluatedAnswer {
	out := quiz.EvaluatedAnswer{
		QuestionID:    q.ID,
		UserAnswer:    given,
		CorrectAnswer: q.CorrectAnswer,
	}
	if given.IsZero() {
		out.Method = quiz.MethodUnanswered
		return out
	}

	switch q.Type.Canonical() {
	case quiz.TypeMultipleChoice:
		out.IsCorrect, out.Method = gradeMultipleChoice(q, given)
	case quiz.TypeTrueFalse:
		out.IsCorrect = strings.EqualFold(strings.TrimSpace(given.String()), strings.TrimSpace(q.CorrectAnswer.String()))
		out.Method = quiz.MethodBoolean
	case quiz.TypeFillInBlank:
		out.IsCorrect = e.fuzzy(given, q.CorrectAnswer, FillInBlankTolerance)
		out.Method = quiz.MethodFuzzy
	case quiz.TypeOpenEnded:
		out.IsCorrect, out.Method = e.gradeOpenEnded(ctx, q, given)
	default:
		out.IsCorrect = given.Equal(q.CorrectAnswer)
		out.Method = quiz.MethodExact
	}
	return out
}

func gradeMultipleChoice(q *quiz.Question, given quiz.Answer) (bool, quiz.GradingMethod) {
	want, wantOK := letterFor(q.CorrectAnswer.String(), q.Options)
	got, gotOK := letterFor(given.String(), q.Options)
	if wantOK && gotOK {
		return want == got, quiz.MethodLetter
	}
	return strings.TrimSpace(given.String()) == strings.TrimSpace(q.CorrectAnswer.String()), quiz.MethodExact
}

// fuzzy matches given against every candidate of expected.
func (e *Evaluator) fuzzy(given, expected quiz.Answer, tol Tolerance) bool {
	g := e.norm.Normalize(given.String())
	if g == "" {
		return false
	}
	for _, c := range expected.Candidates() {
		if tol.Match(g, e.norm.Normalize(c)) {
			return true
		}
	}
	return false
}

func (e *Evaluator) gradeOpenEnded(ctx context.Context, q *quiz.Question, given quiz.Answer) (bool, quiz.GradingMethod) {
	if e.judge != nil {
		jctx, cancel := context.WithTimeout(ctx, e.cfg.SemanticTimeout)
		ok, err := e.judge.Judge(jctx, JudgeInput{
			Question: q.Text,
			Expected: strings.Join(q.CorrectAnswer.Candidates(), " / "),
			Given:    given.String(),
		})
		cancel()
		if err == nil {
			return ok, quiz.MethodSemantic
		}
		e.logger.Warn("semantic check failed, using fuzzy match",
			zap.String("question_id", q.ID), zap.Error(err))
	}
	return e.fuzzy(given, q.CorrectAnswer, OpenEndedFallbackTolerance), quiz.MethodSemanticFallback
}
