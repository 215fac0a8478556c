package generator

import "github.com/abhisek/quizlab/internal/llm"

// QuestionsSchema defines the JSON schema for quiz generation responses.
var QuestionsSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A list of quiz questions with canonical answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner",
						},
						"type": map[string]any{
							"type":        "string",
							"enum":        []any{"multiple_choice", "true_false", "fill_in_blank", "open_ended"},
							"description": "The required type for this question's position",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Four options labelled A) to D) for multiple_choice. Empty otherwise.",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "multiple_choice: the correct option, e.g. \"B) Paris\". true_false: \"true\" or \"false\". Otherwise the expected answer.",
						},
						"accepted_answers": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Other spellings accepted for fill_in_blank. Empty otherwise.",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining the answer",
						},
						"topic": map[string]any{
							"type":        "string",
							"description": "The sub-topic this question tests",
						},
						"difficulty": map[string]any{
							"type": "string",
							"enum": []any{"easy", "medium", "hard"},
						},
					},
					"required": []any{"text", "type", "correct_answer"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

// questionsOutput is the raw model response before shaping.
type questionsOutput struct {
	Questions []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	Text            string   `json:"text"`
	Type            string   `json:"type"`
	Options         []string `json:"options"`
	CorrectAnswer   string   `json:"correct_answer"`
	AcceptedAnswers []string `json:"accepted_answers"`
	Explanation     string   `json:"explanation"`
	Topic           string   `json:"topic"`
	Difficulty      string   `json:"difficulty"`
}
