package analytics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"text/template"

	"github.com/abhisek/quizlab/internal/llm"
	"github.com/abhisek/quizlab/internal/quiz"
)

// Messages used when no coaching text comes from the model.
const (
	NoDataMessage   = "No quiz results yet. Complete a quiz to get your first analysis."
	DegradedMessage = "Sorry, personalised feedback is not available right now. Your scores and weak areas below are up to date."
)

const coachSystemPrompt = `You are a supportive study coach.
You get a learner's recent quiz results, the questions they got wrong, their weakest topics and their weekly score trend.
Write a short message (at most 150 words) addressed to the learner:
- Say how they are trending.
- Name the topics to review first and one concrete way to practise each.
- End with one sentence of encouragement.
Write in the language the questions are written in. Plain text, no markdown headings.`

type mistake struct {
	Topic    string
	Question string
	Given    string
	Expected string
}

type coachData struct {
	Recent    []*quiz.QuizResult
	Mistakes  []mistake
	WeakAreas []quiz.WeakArea
	Weeks     []quiz.WeekBucket
	Average   int
	Total     int
}

var coachTemplate = template.Must(template.New("coach").Parse(`Quizzes taken: {{.Total}}
Average score: {{.Average}}

Recent results (newest first):
{{range .Recent}}- {{.CompletedAt.Format "2006-01-02"}}: {{.Score}}% ({{.CorrectCount}}/{{.TotalPoints}} correct)
{{end}}
Weekly trend (week 0 is the last 7 days):
{{range .Weeks}}- week {{.WeekIndex}}: average {{printf "%.1f" .AvgScore}} over {{.QuizCount}} quizzes
{{else}}- no quizzes in the last four weeks
{{end}}
Weakest topics:
{{range .WeakAreas}}- {{.Topic}}: {{.ErrorCount}} wrong answers
{{else}}- none
{{end}}
Recent wrong answers:
{{range .Mistakes}}- [{{.Topic}}] {{.Question}} | answered: {{.Given}} | expected: {{.Expected}}
{{else}}- none
{{end}}`))

// buildCoachMessage renders the coaching prompt for report r.
func buildCoachMessage(r *quiz.AnalysisReport, results []*quiz.QuizResult, cfg Config) (string, error) {
	newest := make([]*quiz.QuizResult, len(results))
	copy(newest, results)
	sort.SliceStable(newest, func(i, j int) bool {
		return newest[i].CompletedAt.After(newest[j].CompletedAt)
	})

	data := coachData{
		WeakAreas: r.WeakAreas,
		Weeks:     r.WeeklyProgress,
		Average:   r.AverageScore,
		Total:     r.TotalQuizzes,
	}
	if len(newest) > cfg.RecentResults {
		data.Recent = newest[:cfg.RecentResults]
	} else {
		data.Recent = newest
	}
	data.Mistakes = recentMistakes(newest, cfg.RecentMistakes, cfg.DefaultTopic)

	var b bytes.Buffer
	if err := coachTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render coaching prompt: %w", err)
	}
	return b.String(), nil
}

// recentMistakes collects up to max wrong answers from results, which
// must be ordered newest first.
func recentMistakes(results []*quiz.QuizResult, max int, defaultTopic string) []mistake {
	var out []mistake
	for _, res := range results {
		questions := res.QuestionIndex()
		for _, a := range res.Answers {
			if a.IsCorrect {
				continue
			}
			if len(out) >= max {
				return out
			}
			m := mistake{Topic: defaultTopic, Given: a.UserAnswer.String(), Expected: a.CorrectAnswer.String()}
			if q, ok := questions[a.QuestionID]; ok {
				m.Question = q.Text
				if q.Topic != "" {
					m.Topic = q.Topic
				}
			}
			if m.Given == "" {
				m.Given = "(no answer)"
			}
			out = append(out, m)
		}
	}
	return out
}

var errEmptyCoaching = errors.New("empty coaching message")

// coach asks the model for a free-text coaching message.
func (s *Service) coach(ctx context.Context, r *quiz.AnalysisReport, results []*quiz.QuizResult) (string, error) {
	if s.provider == nil {
		return "", &llm.ErrProviderUnavailable{Err: errors.New("no LLM provider configured")}
	}

	userMsg, err := buildCoachMessage(r, results, s.cfg)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, llm.PurposeCoaching), s.cfg.CoachTimeout)
	defer cancel()

	req := llm.UserRequest(coachSystemPrompt, userMsg)
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("coaching: %w", err)
	}
	msg := resp.Text()
	if msg == "" {
		return "", &llm.ErrInvalidResponse{Content: resp.Content, Err: errEmptyCoaching}
	}
	return msg, nil
}
