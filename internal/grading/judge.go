package grading

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/abhisek/quizlab/internal/llm"
)

// SemanticJudge decides whether a learner's open answer means the same as
// the expected one.
type SemanticJudge interface {
	Judge(ctx context.Context, in JudgeInput) (bool, error)
}

// JudgeInput is what the judge sees for one question.
type JudgeInput struct {
	Question string
	Expected string
	Given    string
}

const judgeSystemPrompt = `You compare two answers to the same quiz question.
Decide whether the student's answer means the same thing as the expected answer.
Ignore spelling, casing, word order and phrasing differences.
Reply with exactly one word: yes or no.`

var judgeTemplate = template.Must(template.New("judge").Parse(`Question: {{.Question}}
Expected answer: {{.Expected}}
Student answer: {{.Given}}
Do these two answers mean the same thing? Answer only yes or no.`))

// LLMJudge asks the configured model for a yes/no verdict.
type LLMJudge struct {
	provider llm.Provider
}

// NewLLMJudge returns a judge backed by p.
func NewLLMJudge(p llm.Provider) *LLMJudge {
	return &LLMJudge{provider: p}
}

func (j *LLMJudge) Judge(ctx context.Context, in JudgeInput) (bool, error) {
	var prompt bytes.Buffer
	if err := judgeTemplate.Execute(&prompt, in); err != nil {
		return false, fmt.Errorf("render judge prompt: %w", err)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeAnswerCheck)
	req := llm.UserRequest(judgeSystemPrompt, prompt.String())
	req.MaxTokens = 5
	resp, err := j.provider.Generate(ctx, req)
	if err != nil {
		return false, err
	}
	return affirmative(resp.Text())
}

// verdicts maps the first word of a judge reply to its meaning.
var verdicts = map[string]bool{
	"yes":   true,
	"evet":  true,
	"no":    false,
	"hayır": false,
	"hayir": false,
}

// affirmative reads the verdict from the first word of the reply, skipping
// leading markup such as quotes, asterisks or backticks. A reply that is
// not a clear yes or no is an invalid response.
func affirmative(reply string) (bool, error) {
	word := strings.ToLower(firstWord(reply))
	v, ok := verdicts[word]
	if !ok {
		return false, &llm.ErrInvalidResponse{
			Content: []byte(reply),
			Err:     fmt.Errorf("unrecognized verdict %q", reply),
		}
	}
	return v, nil
}

func firstWord(s string) string {
	start := strings.IndexFunc(s, unicode.IsLetter)
	if start < 0 {
		return ""
	}
	s = s[start:]
	if end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }); end >= 0 {
		s = s[:end]
	}
	return s
}
