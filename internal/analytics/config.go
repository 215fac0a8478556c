package analytics

import "time"

// DefaultTopic is used for wrong answers whose question has no topic.
const DefaultTopic = "General"

// Config holds analytics settings.
type Config struct {
	// DefaultTopic replaces a missing question topic.
	DefaultTopic string `mapstructure:"default_topic"`

	// CoachTimeout bounds the coaching model call.
	CoachTimeout time.Duration `mapstructure:"coach_timeout"`

	// RecentResults and RecentMistakes limit how much history the coaching
	// prompt carries.
	RecentResults  int `mapstructure:"recent_results"`
	RecentMistakes int `mapstructure:"recent_mistakes"`

	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// DefaultConfig returns sensible defaults for analysis.
func DefaultConfig() Config {
	return Config{
		DefaultTopic:   DefaultTopic,
		CoachTimeout:   30 * time.Second,
		RecentResults:  5,
		RecentMistakes: 20,
		MaxTokens:      600,
		Temperature:    0.5,
	}
}
