package grading

import "time"

// Config controls the Evaluator.
type Config struct {
	// Language is the BCP 47 tag used for case folding. Default "tr".
	Language string `mapstructure:"language"`

	// MaxConcurrency bounds how many questions are graded at once.
	MaxConcurrency int `mapstructure:"max_concurrency"`

	// SemanticTimeout bounds each semantic judge call.
	SemanticTimeout time.Duration `mapstructure:"semantic_timeout"`
}

// DefaultConfig returns the standard grading settings.
func DefaultConfig() Config {
	return Config{
		Language:        DefaultLanguage,
		MaxConcurrency:  8,
		SemanticTimeout: 15 * time.Second,
	}
}
