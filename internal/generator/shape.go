package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/quizlab/internal/quiz"
)

const optionLetters = "ABCD"

// optionLabel matches a leading "B)", "b.", "(B)" or "B:" label.
var optionLabel = regexp.MustCompile(`^\s*\(?([A-Da-d])\s*[).:]\s*`)

// shapeQuestions turns the model output into exactly req.QuestionCount
// questions. Extra questions are dropped; too few is an error.
func shapeQuestions(raws []rawQuestion, req Request, validators []Validator) ([]quiz.Question, error) {
	if len(raws) < req.QuestionCount {
		return nil, &ShapeError{Message: fmt.Sprintf("got %d questions, want %d", len(raws), req.QuestionCount)}
	}
	raws = raws[:req.QuestionCount]

	out := make([]quiz.Question, len(raws))
	for i, raw := range raws {
		want := req.Format.TypeFor(i)
		q := shapeQuestion(raw, req)
		q.ID = quiz.QuestionID(i)
		for _, v := range validators {
			if err := v.Validate(&q, want); err != nil {
				err.Index = i
				return nil, err
			}
		}
		out[i] = q
	}
	return out, nil
}

func shapeQuestion(raw rawQuestion, req Request) quiz.Question {
	q := quiz.Question{
		Text:        strings.TrimSpace(raw.Text),
		Type:        quiz.QuestionType(strings.ToLower(strings.TrimSpace(raw.Type))),
		Explanation: strings.TrimSpace(raw.Explanation),
		Topic:       strings.TrimSpace(raw.Topic),
		Difficulty:  req.Difficulty,
	}
	if q.Topic == "" {
		q.Topic = req.Topic
	}
	if d, err := quiz.ParseDifficulty(strings.ToLower(strings.TrimSpace(raw.Difficulty))); err == nil && raw.Difficulty != "" {
		q.Difficulty = d
	}

	answer := strings.TrimSpace(raw.CorrectAnswer)
	switch q.Type.Canonical() {
	case quiz.TypeMultipleChoice:
		q.Options = labelOptions(raw.Options)
		q.CorrectAnswer = quiz.Text(resolveOption(answer, q.Options))
	case quiz.TypeTrueFalse:
		if b, ok := parseBool(answer); ok {
			q.CorrectAnswer = quiz.Bool(b)
		} else {
			q.CorrectAnswer = quiz.Text(answer)
		}
	case quiz.TypeFillInBlank:
		q.CorrectAnswer = acceptedAnswers(answer, raw.AcceptedAnswers)
	default:
		q.CorrectAnswer = quiz.Text(answer)
	}
	return q
}

// labelOptions rewrites options into "A) text" form, dropping blanks.
func labelOptions(opts []string) []string {
	var out []string
	for _, opt := range opts {
		text := strings.TrimSpace(optionLabel.ReplaceAllString(opt, ""))
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	for i := range out {
		if i < len(optionLetters) {
			out[i] = fmt.Sprintf("%c) %s", optionLetters[i], out[i])
		}
	}
	return out
}

// resolveOption maps a model answer ("B", "B) Paris" or "Paris") onto the
// labelled option it names. Unresolvable answers are returned unchanged.
func resolveOption(answer string, options []string) string {
	if m := optionLabel.FindStringSubmatch(answer); m != nil || len(answer) == 1 {
		letter := answer
		if m != nil {
			letter = m[1]
		}
		if i := strings.IndexByte(optionLetters, strings.ToUpper(letter)[0]); i >= 0 && i < len(options) {
			return options[i]
		}
	}
	text := strings.TrimSpace(optionLabel.ReplaceAllString(answer, ""))
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(optionLabel.ReplaceAllString(opt, "")), text) {
			return opt
		}
	}
	return answer
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "doğru", "evet", "yes":
		return true, true
	case "yanlış", "hayır", "no":
		return false, true
	}
	b, err := strconv.ParseBool(s)
	return b, err == nil
}

// acceptedAnswers returns a single answer, or a list when the model
// supplied alternative spellings.
func acceptedAnswers(answer string, extra []string) quiz.Answer {
	seen := map[string]bool{}
	var list []string
	for _, e := range append([]string{answer}, extra...) {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		list = append(list, e)
	}
	if len(list) <= 1 {
		return quiz.Text(answer)
	}
	return quiz.List(list...)
}
