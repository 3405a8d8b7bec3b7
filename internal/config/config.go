// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const defaultTokenDir = ".garmin-pr-plan"

// ErrMissingEnv is returned by Validate and Require when required variables are unset
var ErrMissingEnv = errors.New("missing environment variables")

// Config holds all application configuration
type Config struct {
	Gemini GeminiConfig `envPrefix:"GEMINI_"`
	Garmin GarminConfig `envPrefix:"GARMIN_"`

	TokenDir    string `env:"PRPLAN_TOKEN_DIR"`
	CacheDir    string `env:"PRPLAN_CACHE_DIR"`
	NoCache     bool   `env:"PRPLAN_NOCACHE"`
	HistoryDays int    `env:"PRPLAN_HISTORY_DAYS" envDefault:"90"`
	PromptPath  string `env:"PRPLAN_PROMPT_PATH"` // custom prompt template

	Port      string `env:"PORT" envDefault:"8080"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	APIToken  string `env:"API_TOKEN"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// GeminiConfig holds language model configuration
type GeminiConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"gemini-3-pro-preview"`
}

// GarminConfig holds Garmin Connect configuration
type GarminConfig struct {
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
	BaseURL  string `env:"BASE_URL"`
	TokenURL string `env:"TOKEN_URL"`
	ClientID string `env:"CLIENT_ID"`
}

// Load reads an optional .env file from the working directory, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables only
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.HistoryDays <= 0 {
		return nil, fmt.Errorf("PRPLAN_HISTORY_DAYS must be positive, got %d", cfg.HistoryDays)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	if cfg.TokenDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve token dir: %w", err)
		}
		cfg.TokenDir = filepath.Join(home, defaultTokenDir)
	} else if rest, ok := strings.CutPrefix(cfg.TokenDir, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve token dir: %w", err)
		}
		cfg.TokenDir = filepath.Join(home, rest)
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(cfg.TokenDir, "cache")
	}
	return &cfg, nil
}

// Level returns the parsed log level
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// lookup maps required variable names to their loaded values
func (c *Config) lookup() map[string]string {
	return map[string]string{
		"GEMINI_API_KEY":  c.Gemini.APIKey,
		"GARMIN_EMAIL":    c.Garmin.Email,
		"GARMIN_PASSWORD": c.Garmin.Password,
		"API_TOKEN":       c.APIToken,
		"REDIS_ADDR":      c.RedisAddr,
	}
}

// Require reports every listed variable that is unset, in the given order
func (c *Config) Require(names ...string) error {
	values := c.lookup()
	var missing []string
	for _, n := range names {
		if strings.TrimSpace(values[n]) == "" {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return nil
}

// Validate checks what the interactive planner needs
func (c *Config) Validate() error {
	return c.Require("GEMINI_API_KEY", "GARMIN_EMAIL", "GARMIN_PASSWORD")
}
