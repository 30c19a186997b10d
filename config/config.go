package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"rephrasecoach/models"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Topics   TopicsConfig   `yaml:"topics"`
	Feedback FeedbackConfig `yaml:"feedback"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"3000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type LLMConfig struct {
	Provider string       `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	OpenAI   OpenAIConfig `yaml:"openai"`
	Gemini   GeminiConfig `yaml:"gemini"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"  env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string `yaml:"model"    env:"OPENAI_MODEL"    env-default:"gpt-3.5-turbo"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model"   env:"GEMINI_MODEL"   env-default:"gemini-2.5-flash"`
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string `yaml:"base_url" env:"GEMINI_BASE_URL"`
}

// TopicsConfig decides where new challenges come from.
// Source is "static" (built-in bank) or "model".
type TopicsConfig struct {
	Source           string `yaml:"source"             env:"TOPICS_SOURCE"             env-default:"model"`
	FallbackToStatic bool   `yaml:"fallback_to_static" env:"TOPICS_FALLBACK_TO_STATIC" env-default:"false"`
}

type FeedbackConfig struct {
	// Shape is the default response layout for /api/rephrase and the practice page.
	Shape string `yaml:"shape" env:"FEEDBACK_SHAPE" env-default:"per_level"`
	// OnFailure is "retain" (keep the last good result visible after a failed
	// submission) or "clear".
	OnFailure string `yaml:"on_failure" env:"FEEDBACK_ON_FAILURE" env-default:"retain"`
}

func (f FeedbackConfig) RetainResultOnFailure() bool {
	return f.OnFailure != "clear"
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"rephrase_session"`
	TTL        time.Duration `yaml:"ttl"         env:"SESSION_TTL"         env-default:"12h"`
}

type LogConfig struct {
	Mode string `yaml:"mode" env:"LOG_MODE" env-default:"development"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"      env:"OTEL_ENABLED"      env-default:"false"`
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"rephrase-coach"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
}

const (
	ProviderOpenAI       = "openai"
	ProviderGemini       = "gemini"
	ProviderGeminiLegacy = "gemini-legacy"
)

// LoadConfig reads the YAML file at path, with environment variables taking
// precedence. When path is empty or missing, only env and defaults are used.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			return validated(&cfg)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	return validated(&cfg)
}

func validated(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the provider selection and its credentials.
func (c *Config) Validate() error {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" {
			return errors.New("llm.openai.api_key is required for provider openai")
		}
	case ProviderGemini, ProviderGeminiLegacy:
		if c.LLM.Gemini.APIKey == "" {
			return fmt.Errorf("llm.gemini.api_key is required for provider %s", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	switch c.Topics.Source {
	case "static", "model":
	default:
		return fmt.Errorf("unknown topics source %q", c.Topics.Source)
	}

	if _, err := models.ParseResponseShape(c.Feedback.Shape); err != nil {
		return err
	}
	switch c.Feedback.OnFailure {
	case "retain", "clear":
	default:
		return fmt.Errorf("unknown feedback on_failure policy %q", c.Feedback.OnFailure)
	}

	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
