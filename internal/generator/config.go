package generator

import "time"

// Config controls the behavior of the Generator.
type Config struct {
	// Validators run in order on every shaped question; the first
	// failure rejects the whole model response.
	Validators []Validator `mapstructure:"-"`

	// MaxQuestions caps Request.QuestionCount.
	MaxQuestions int `mapstructure:"max_questions"`

	// Timeout bounds one model call.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxTokens is the token budget for the model response. Zero scales
	// the budget with the question count.
	MaxTokens int `mapstructure:"max_tokens"`

	// Temperature controls model output randomness (0.0-1.0).
	Temperature float64 `mapstructure:"temperature"`

	// MaxSourceChars truncates source notes before they reach the prompt.
	MaxSourceChars int `mapstructure:"max_source_chars"`
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&AnswerValidator{},
		},
		MaxQuestions:   50,
		Timeout:        45 * time.Second,
		Temperature:    0.7,
		MaxSourceChars: 12000,
	}
}

func (c Config) maxTokens(count int) int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 512 + 256*count
}
