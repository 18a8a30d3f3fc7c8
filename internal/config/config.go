// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Database   DatabaseConfig  `yaml:"database"`
	LLM        LLMConfig       `yaml:"llm"`
	Analysis   AnalysisConfig  `yaml:"analysis"`
	Sessions   SessionsConfig  `yaml:"sessions"`
	RateLimits RateLimitConfig `yaml:"rate_limits"`
	Logging    LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port     int  `yaml:"port"`
	EnableUI bool `yaml:"enable_ui"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite
	Path   string `yaml:"path"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, openrouter, anthropic, gemini, ollama
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

// AnalysisConfig tunes the correction pipeline.
type AnalysisConfig struct {
	// Timeout bounds one whole batch (grammar plus the three analyses).
	Timeout time.Duration `yaml:"timeout"`
	Models  ModelOverride `yaml:"models"`
}

// ModelOverride picks a model per operation; empty falls back to llm.model.
type ModelOverride struct {
	Grammar     string `yaml:"grammar"`
	Readability string `yaml:"readability"`
	ToneVoice   string `yaml:"tone_voice"`
	Cliches     string `yaml:"cliches"`
}

type SessionsConfig struct {
	MaxIdle       time.Duration `yaml:"max_idle"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"default_requests_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			EnableUI: true,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/inkpolish.db",
		},
		LLM: LLMConfig{
			Provider: "openrouter",
			Model:    "openai/gpt-4.1-mini",
		},
		Analysis: AnalysisConfig{
			Timeout: 2 * time.Minute,
		},
		Sessions: SessionsConfig{
			MaxIdle:       6 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		RateLimits: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run init-config to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	content := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

const sampleConfig = `# inkpolish configuration

server:
  port: 8080
  enable_ui: true

database:
  driver: sqlite
  path: ./data/inkpolish.db

llm:
  provider: openrouter  # openai, openrouter, anthropic, gemini, ollama
  model: openai/gpt-4.1-mini
  api_key: ${OPENROUTER_API_KEY}

  # For OpenAI:
  # provider: openai
  # model: gpt-4.1-mini
  # api_key: ${OPENAI_API_KEY}

  # For Ollama (local):
  # provider: ollama
  # model: llama3
  # base_url: http://localhost:11434

analysis:
  timeout: 2m
  models:
    grammar: openai/gpt-4.1-nano
    readability: openai/gpt-4.1-mini
    tone_voice: openai/o4-mini-high
    cliches: openai/gpt-4.1-nano

sessions:
  max_idle: 6h
  sweep_interval: 10m

rate_limits:
  default_requests_per_minute: 60

logging:
  level: info  # debug, info, warn, error
  format: json # json or text
`

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0644)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	validProviders := map[string]bool{"openai": true, "openrouter": true, "anthropic": true, "gemini": true, "ollama": true}
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("unsupported LLM provider: %s", c.LLM.Provider)
	}

	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return fmt.Errorf("%s API key is required", c.LLM.Provider)
	}

	if c.Analysis.Timeout < 0 {
		return fmt.Errorf("analysis timeout must not be negative")
	}

	if c.RateLimits.RequestsPerMinute < 1 {
		return fmt.Errorf("invalid rate limit: %d", c.RateLimits.RequestsPerMinute)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
func interpolateEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if not set
	})
}
