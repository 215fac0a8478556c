package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/quizlab/internal/analytics"
	"github.com/abhisek/quizlab/internal/events"
	"github.com/abhisek/quizlab/internal/generator"
	"github.com/abhisek/quizlab/internal/grading"
	"github.com/abhisek/quizlab/internal/llm"
	"github.com/abhisek/quizlab/internal/pipeline"
	"github.com/abhisek/quizlab/internal/store"
)

// EnvPrefix prefixes every environment variable override, e.g.
// QUIZLAB_STORAGE_DRIVER for storage.driver.
const EnvPrefix = "QUIZLAB"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env       string           `mapstructure:"env"` // local, dev, production
	Server    Server           `mapstructure:"server"`
	Storage   store.Config     `mapstructure:"storage"`
	LLM       llm.Config       `mapstructure:"llm"`
	Generator generator.Config `mapstructure:"generator"`
	Grading   grading.Config   `mapstructure:"grading"`
	Analytics analytics.Config `mapstructure:"analytics"`
	Pipeline  pipeline.Config  `mapstructure:"pipeline"`
	AMQP      AMQP             `mapstructure:"amqp"`
}

// Server configures the HTTP API.
type Server struct {
	Addr        string   `mapstructure:"addr"`
	GinMode     string   `mapstructure:"gin_mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// AMQP configures result event publishing. An empty URL disables it.
type AMQP struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

// Load reads configuration from an optional config file, a .env file and
// environment variables, in increasing priority. path overrides the
// config file search.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.LLM.Discover()
	if cfg.LLM.Provider != "" {
		if err := cfg.LLM.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("storage.driver", store.DriverSQLite)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.mongo_database", "quizlab")

	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)

	g := generator.DefaultConfig()
	v.SetDefault("generator.max_questions", g.MaxQuestions)
	v.SetDefault("generator.timeout", g.Timeout)
	v.SetDefault("generator.max_tokens", g.MaxTokens)
	v.SetDefault("generator.temperature", g.Temperature)
	v.SetDefault("generator.max_source_chars", g.MaxSourceChars)

	gr := grading.DefaultConfig()
	v.SetDefault("grading.language", gr.Language)
	v.SetDefault("grading.max_concurrency", gr.MaxConcurrency)
	v.SetDefault("grading.semantic_timeout", gr.SemanticTimeout)

	a := analytics.DefaultConfig()
	v.SetDefault("analytics.default_topic", a.DefaultTopic)
	v.SetDefault("analytics.coach_timeout", a.CoachTimeout)
	v.SetDefault("analytics.recent_results", a.RecentResults)
	v.SetDefault("analytics.recent_mistakes", a.RecentMistakes)
	v.SetDefault("analytics.max_tokens", a.MaxTokens)
	v.SetDefault("analytics.temperature", a.Temperature)

	p := pipeline.DefaultConfig()
	v.SetDefault("pipeline.queue_size", p.QueueSize)
	v.SetDefault("pipeline.refresh_timeout", p.RefreshTimeout)
	v.SetDefault("pipeline.in_process_refresh", p.InProcessRefresh)

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", events.DefaultExchange)
	v.SetDefault("amqp.queue", "quizlab.analytics")
}
