// Package config holds all fuoco configuration, loaded from fuoco.yaml
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all fuoco configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// DataDir is the root for the database, model artifacts and logs.
	DataDir string `yaml:"data_dir"`

	// DatabasePath is the SQLite file backing the key-value store.
	DatabasePath string `yaml:"database_path"`

	// Model configures the local model artifact and its runtime.
	Model ModelConfig `yaml:"model"`

	// Generation holds default generation parameters.
	Generation GenerationConfig `yaml:"generation"`

	// Pacer configures the output reveal cadence.
	Pacer PacerConfig `yaml:"pacer"`

	// Persona selects the assistant persona for prompt building.
	Persona string `yaml:"persona"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig configures the model artifact and the local runtime serving it.
type ModelConfig struct {
	ID          string `yaml:"id"`           // logical model identity, e.g. "gemma-2b-q4"
	Version     string `yaml:"version"`      // target artifact version tag
	DownloadURL string `yaml:"download_url"` // where the weights artifact is fetched from
	SizeBytes   int64  `yaml:"size_bytes"`   // expected artifact size, 0 = unknown
	Endpoint    string `yaml:"endpoint"`     // runtime endpoint, default http://localhost:11434
	RuntimeName string `yaml:"runtime_name"` // model name as known by the runtime
	Timeout     string `yaml:"timeout"`      // per-request runtime timeout
}

// GenerationConfig holds default generation parameters.
type GenerationConfig struct {
	MaxTokens     int      `yaml:"max_tokens"`
	Temperature   float64  `yaml:"temperature"`
	StopSequences []string `yaml:"stop_sequences"`
}

// PacerConfig bounds the randomized per-message reveal interval.
type PacerConfig struct {
	MinIntervalMs int `yaml:"min_interval_ms"`
	MaxIntervalMs int `yaml:"max_interval_ms"`
}

// LoggingConfig controls the categorized debug logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "fuoco",
		Version: "1.0.0",

		DataDir:      "data",
		DatabasePath: "data/fuoco.db",

		Model: ModelConfig{
			ID:          "gemma-2b-q4",
			Version:     "v2",
			DownloadURL: "https://models.fuoco.app/gemma-2b-q4/v2/model.gguf",
			Endpoint:    "http://localhost:11434",
			RuntimeName: "gemma:2b",
			Timeout:     "120s",
		},

		Generation: GenerationConfig{
			MaxTokens:   512,
			Temperature: 0.7,
		},

		Pacer: PacerConfig{
			MinIntervalMs: 18,
			MaxIntervalMs: 42,
		},

		Persona: "fuoco",

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("FUOCO_DATA_DIR"); dir != "" {
		c.DataDir = dir
		c.DatabasePath = filepath.Join(dir, "fuoco.db")
	}
	if path := os.Getenv("FUOCO_DB"); path != "" {
		c.DatabasePath = path
	}
	if url := os.Getenv("FUOCO_MODEL_URL"); url != "" {
		c.Model.DownloadURL = url
	}
	if ep := os.Getenv("OLLAMA_HOST"); ep != "" {
		c.Model.Endpoint = ep
	}
}

// ModelsDir returns the directory holding model artifacts.
func (c *Config) ModelsDir() string {
	return filepath.Join(c.DataDir, "models")
}

// RuntimeTimeout parses the model runtime timeout, defaulting to 2 minutes.
func (c *Config) RuntimeTimeout() time.Duration {
	d, err := time.ParseDuration(c.Model.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Model.ID == "" {
		return fmt.Errorf("model.id is required")
	}
	if c.Model.Version == "" {
		return fmt.Errorf("model.version is required")
	}
	if c.Pacer.MinIntervalMs <= 0 || c.Pacer.MaxIntervalMs < c.Pacer.MinIntervalMs {
		return fmt.Errorf("pacer interval band is invalid: [%d, %d]",
			c.Pacer.MinIntervalMs, c.Pacer.MaxIntervalMs)
	}
	if c.Generation.MaxTokens <= 0 {
		return fmt.Errorf("generation.max_tokens must be positive")
	}
	return nil
}
