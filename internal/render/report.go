package render

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizlab/internal/quiz"
)

const barWidth = 48

// Report renders an analysis report.
func Report(r *quiz.AnalysisReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Progress report for "+r.UserID) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d quizzes, average score %d", r.TotalQuizzes, r.AverageScore)) + "\n")

	if r.TotalQuizzes > 0 {
		b.WriteString(sectionStyle.Render("Last four weeks") + "\n")
		if len(r.WeeklyProgress) == 0 {
			b.WriteString(hintStyle.Render("No quizzes in the last four weeks.") + "\n")
		}
		for _, w := range r.WeeklyProgress {
			label := fmt.Sprintf("%-10s", weekLabel(w.WeekIndex))
			b.WriteString(bar(label, w.AvgScore, barWidth))
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %d quiz%s", w.QuizCount, plural(w.QuizCount, "", "zes"))) + "\n")
		}

		b.WriteString(sectionStyle.Render("Weak areas") + "\n")
		if len(r.WeakAreas) == 0 {
			b.WriteString(correctStyle.Render("No mistakes recorded.") + "\n")
		}
		for i, w := range r.WeakAreas {
			b.WriteString(fmt.Sprintf("%d. %s %s\n", i+1,
				bodyStyle.Render(w.Topic),
				incorrectStyle.Render(fmt.Sprintf("(%d wrong)", w.ErrorCount))))
		}
	}

	b.WriteString("\n")
	msg := bodyStyle.Render(r.Message)
	if r.Degraded {
		msg = warnStyle.Render(r.Message)
	}
	b.WriteString(cardStyle.Render(msg) + "\n")
	return b.String()
}

// Evaluation renders per-question grading results.
func Evaluation(e *quiz.Evaluation) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Score: %d", e.Score)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d/%d correct)", e.CorrectCount(), len(e.Answers))) + "\n\n")

	for _, a := range e.Answers {
		mark := correctStyle.Render("✓")
		if !a.IsCorrect {
			mark = incorrectStyle.Render("✗")
		}
		given := a.UserAnswer.String()
		if a.UserAnswer.IsZero() {
			given = "(no answer)"
		}
		line := fmt.Sprintf("%s %-4s %s", mark, a.QuestionID, bodyStyle.Render(given))
		if !a.IsCorrect {
			line += dimStyle.Render("  expected: " + strings.Join(a.CorrectAnswer.Candidates(), " | "))
		}
		b.WriteString(line + hintStyle.Render("  ["+string(a.Method)+"]") + "\n")
	}
	return b.String()
}

// Quiz renders a generated quiz without its answers.
func Quiz(q *quiz.Quiz) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(q.Topic))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s · %s · %d questions", q.Format, q.Difficulty, len(q.Questions))) + "\n")
	if q.UsedFallback {
		b.WriteString(warnStyle.Render("The model was unavailable; these are placeholder questions.") + "\n")
	}
	b.WriteString(dimStyle.Render("id: "+q.ID) + "\n")

	for i, question := range q.Questions {
		b.WriteString("\n" + bodyStyle.Render(fmt.Sprintf("%d. %s", i+1, question.Text)))
		b.WriteString(hintStyle.Render("  ["+string(question.Type)+"]") + "\n")
		for _, opt := range question.Options {
			b.WriteString("   " + bodyStyle.Render(opt) + "\n")
		}
	}
	return b.String()
}

func weekLabel(i int) string {
	if i == 0 {
		return "This week"
	}
	return fmt.Sprintf("%d wk ago", i)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
