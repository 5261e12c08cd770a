package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values read from the config file.
const (
	EnvAPIURL   = "FILMHUB_API_URL"
	EnvDatabase = "FILMHUB_DB"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig contains settings for the remote filmhub API.
type APIConfig struct {
	BaseURL        string        `toml:"base_url"`
	TimeoutSeconds int           `toml:"timeout_seconds"`
	RateLimit      float64       `toml:"rate_limit"`
	Burst          int           `toml:"burst"`
	Breaker        BreakerConfig `toml:"breaker"`
}

// BreakerConfig contains circuit breaker settings for the API transport.
type BreakerConfig struct {
	Enabled             bool   `toml:"enabled"`
	MaxRequests         uint32 `toml:"max_requests"`
	IntervalSeconds     int    `toml:"interval_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	ConsecutiveFailures uint32 `toml:"consecutive_failures"`
}

// StorageConfig contains local (durable) storage settings.
type StorageConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// UIConfig contains page controller and TUI settings.
type UIConfig struct {
	NoticeSeconds int    `toml:"notice_seconds"`
	FeaturedCount int    `toml:"featured_count"`
	LogFile       string `toml:"log_file"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Timeout returns the HTTP client timeout; zero means no timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NoticeTTL returns how long a success notice stays visible.
func (c UIConfig) NoticeTTL() time.Duration {
	if c.NoticeSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.NoticeSeconds) * time.Second
}

// Validate reports configuration values the client cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is empty", ErrInvalidConfig)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is empty", ErrInvalidConfig)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: api.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides config values with any set environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Storage.Path = v
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
// Environment overrides are applied in both cases.
func LoadConfigOrDefault(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config.ApplyEnv()
	return config, config.Validate()
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
