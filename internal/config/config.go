// Package config loads dossier configuration from YAML with environment
// overrides. Missing files are not an error: defaults apply, then env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all dossier configuration.
type Config struct {
	// LLM gateway configuration
	LLM LLMConfig `yaml:"llm"`

	// Data locations (SQLite database, object store)
	Data DataConfig `yaml:"data"`

	// HTTP server
	Server ServerConfig `yaml:"server"`

	// Surveillance sweep
	Sweep SweepConfig `yaml:"sweep"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the AI gateway.
type LLMConfig struct {
	Provider   string `yaml:"provider"` // gemini, openai
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"` // openai-compatible endpoints only
	Timeout    string `yaml:"timeout"`
	MaxRetries int    `yaml:"max_retries"`
}

// DataConfig configures where state lives. DatabasePath and ObjectsDir
// default to locations under Dir when left empty.
type DataConfig struct {
	Dir          string `yaml:"dir"`
	DatabasePath string `yaml:"database_path"`
	ObjectsDir   string `yaml:"objects_dir"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Bind      string `yaml:"bind"`
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"` // empty disables bearer auth (dev mode)
}

// SweepConfig configures the surveillance sweep.
type SweepConfig struct {
	// Workers bounds concurrent per-idea pipelines. 3 balances gateway
	// rate limits against the invocation time budget; treat as a tunable.
	Workers int `yaml:"workers"`

	// Interval enables the in-process scheduler when non-empty (e.g. "6h").
	Interval string `yaml:"interval"`
}

// LoggingConfig configures category file logging. Dir defaults to
// <data.dir>/logs when empty and logging is enabled.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Level   string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:   "gemini",
			Model:      "gemini-3-flash-preview",
			Timeout:    "10m",
			MaxRetries: 3,
		},
		Data: DataConfig{
			Dir: "data",
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8787,
		},
		Sweep: SweepConfig{
			Workers: 3,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file returns
// defaults (plus env overrides), not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. Provider keys
// are checked in priority order; the last match wins, mirroring how the
// gateway factory detects providers.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if url := os.Getenv("DOSSIER_LLM_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if dir := os.Getenv("DOSSIER_DATA_DIR"); dir != "" {
		c.Data.Dir = dir
	}
	if token := os.Getenv("DOSSIER_AUTH_TOKEN"); token != "" {
		c.Server.AuthToken = token
	}
}

// DatabasePath returns the SQLite path, defaulting under the data dir.
func (c *Config) DatabasePath() string {
	if c.Data.DatabasePath != "" {
		return c.Data.DatabasePath
	}
	return filepath.Join(c.Data.Dir, "dossier.db")
}

// ObjectsDir returns the object store root, defaulting under the data dir.
func (c *Config) ObjectsDir() string {
	if c.Data.ObjectsDir != "" {
		return c.Data.ObjectsDir
	}
	return filepath.Join(c.Data.Dir, "objects")
}

// LogsDir returns the log directory, empty when logging is disabled.
func (c *Config) LogsDir() string {
	if !c.Logging.Enabled {
		return ""
	}
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return filepath.Join(c.Data.Dir, "logs")
}

// ListenAddr returns the server bind address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// GatewayTimeout returns the LLM timeout as a duration.
func (c *Config) GatewayTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// SweepInterval returns the scheduler interval; zero disables scheduling.
func (c *Config) SweepInterval() time.Duration {
	if c.Sweep.Interval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Sweep.Interval)
	if err != nil {
		return 0
	}
	return d
}

// SweepWorkers returns the worker bound, defaulting to 3.
func (c *Config) SweepWorkers() int {
	if c.Sweep.Workers <= 0 {
		return 3
	}
	return c.Sweep.Workers
}

// ValidProviders lists the supported gateway providers.
var ValidProviders = []string{"gemini", "openai"}

// Validate checks settings needed before any gateway call.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY or OPENAI_API_KEY)")
	}
	valid := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}
