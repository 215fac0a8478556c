package generator

import (
	"bytes"
	"fmt"
	"text/template"
	"unicode/utf8"

	"github.com/abhisek/quizlab/internal/quiz"
)

const systemPrompt = `You are an experienced teacher writing exam questions.

Rules:
- Write exactly the number of questions requested, in the order given.
- Every question must have the type required for its position. Do not substitute types.
- multiple_choice: give exactly 4 options labelled "A) ", "B) ", "C) ", "D) " with exactly one correct. correct_answer is the full correct option, e.g. "C) Ankara". Distractors should reflect common misconceptions.
- true_false: the text is a statement; correct_answer is "true" or "false".
- fill_in_blank: mark the blank with ___; correct_answer is the missing word or phrase; list other accepted spellings in accepted_answers.
- open_ended: ask for a short explanation; correct_answer is a concise model answer.
- Write questions and answers in the same language as the topic.
- Respond with JSON only.`

type promptSlot struct {
	Number int
	Type   quiz.QuestionType
}

type promptData struct {
	Topic      string
	Difficulty quiz.Difficulty
	Count      int
	Slots      []promptSlot
	Source     string
}

var userTemplate = template.Must(template.New("generate").Parse(`Topic: {{.Topic}}
Difficulty: {{.Difficulty}}
Number of questions: {{.Count}}

Required question types:
{{range .Slots}}{{.Number}}. {{.Type}}
{{end}}{{if .Source}}
Base every question on the course notes below. Do not ask about anything the notes do not cover.
<<<NOTES
{{.Source}}
NOTES>>>
{{end}}`))

// buildUserMessage renders the user prompt for req.
func buildUserMessage(req Request, cfg Config) (string, error) {
	data := promptData{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Count:      req.QuestionCount,
		Source:     truncateRunes(req.SourceText, cfg.MaxSourceChars),
	}
	for i := 0; i < req.QuestionCount; i++ {
		data.Slots = append(data.Slots, promptSlot{Number: i + 1, Type: req.Format.TypeFor(i)})
	}

	var b bytes.Buffer
	if err := userTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
