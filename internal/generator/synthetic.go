package generator

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"github.com/abhisek/quizlab/internal/quiz"
)

const placeholderAnswer = "placeholder answer"

// Synthetic builds req.QuestionCount placeholder questions cycling through
// the format's palette. The output depends only on req.
func Synthetic(req Request) []quiz.Question {
	rng := rand.New(rand.NewPCG(requestSeed(req)))

	out := make([]quiz.Question, req.QuestionCount)
	for i := range out {
		q := quiz.Question{
			ID:          quiz.QuestionID(i),
			Type:        req.Format.TypeFor(i),
			Difficulty:  req.Difficulty,
			Topic:       req.Topic,
			Explanation: "Generated offline; review with your course material.",
		}
		switch q.Type {
		case quiz.TypeMultipleChoice:
			q.Text = fmt.Sprintf("%s: question %d. Choose the correct option.", req.Topic, i+1)
			for j := 0; j < len(optionLetters); j++ {
				q.Options = append(q.Options, fmt.Sprintf("%c) Option %d", optionLetters[j], j+1))
			}
			q.CorrectAnswer = quiz.Text(q.Options[0])
		case quiz.TypeTrueFalse:
			q.Text = fmt.Sprintf("%s: statement %d is true.", req.Topic, i+1)
			q.CorrectAnswer = quiz.Bool(rng.IntN(2) == 1)
		case quiz.TypeFillInBlank:
			q.Text = fmt.Sprintf("%s: question %d. Fill in the blank: ___", req.Topic, i+1)
			q.CorrectAnswer = quiz.Text(placeholderAnswer)
		default:
			q.Text = fmt.Sprintf("%s: question %d. Explain in your own words.", req.Topic, i+1)
			q.CorrectAnswer = quiz.Text(placeholderAnswer)
		}
		out[i] = q
	}
	return out
}

func requestSeed(req Request) (uint64, uint64) {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%s", req.Topic, req.Difficulty, req.Format, req.QuestionCount, req.SourceText)
	s := h.Sum64()
	return s, s ^ 0x9e3779b97f4a7c15
}
