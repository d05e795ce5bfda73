package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL  = "https://api.sitwatch.net/api"
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 5 * time.Second
	DefaultEvent    = "newVideo"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Hooks   HooksConfig   `yaml:"hooks"`
	Gemini  GeminiConfig  `yaml:"gemini"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type WatchConfig struct {
	Event                string        `yaml:"event"`
	Interval             time.Duration `yaml:"interval"`
	Legacy               bool          `yaml:"legacy"`
	MaxConcurrentFetches int           `yaml:"max_concurrent_fetches"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Address string `yaml:"address"`
}

type HooksConfig struct {
	Exec    string   `yaml:"exec"`
	Args    []string `yaml:"args"`
	WorkDir string   `yaml:"work_dir"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns a validated config with every default applied.
func Default() *Config {
	var cfg Config
	_ = cfg.Validate()
	return &cfg
}

// Validate checks field values and fills in defaults.
func (c *Config) Validate() error {
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Watch.Interval < 0 {
		return fmt.Errorf("watch.interval must not be negative")
	}
	if c.Watch.MaxConcurrentFetches < 0 {
		return fmt.Errorf("watch.max_concurrent_fetches must not be negative")
	}
	if c.Hooks.Exec == "" && len(c.Hooks.Args) > 0 {
		return fmt.Errorf("hooks.exec is required when hooks.args is set")
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.Watch.Event == "" {
		c.Watch.Event = DefaultEvent
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = DefaultInterval
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}

	return nil
}
