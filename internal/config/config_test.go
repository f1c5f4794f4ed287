package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.Model.ID)
	assert.NotEmpty(t, cfg.Model.Version)
	assert.Positive(t, cfg.Pacer.MinIntervalMs)
	assert.GreaterOrEqual(t, cfg.Pacer.MaxIntervalMs, cfg.Pacer.MinIntervalMs)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "fuoco", cfg.Name)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "fuoco.yaml")

	cfg := DefaultConfig()
	cfg.Persona = "coach"
	cfg.Model.Version = "v7"
	cfg.Pacer.MaxIntervalMs = 99
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "coach", got.Persona)
	assert.Equal(t, "v7", got.Model.Version)
	assert.Equal(t, 99, got.Pacer.MaxIntervalMs)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FUOCO_DATA_DIR", "/tmp/fuoco-test")
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fuoco-test", cfg.DataDir)
	assert.Equal(t, filepath.Join("/tmp/fuoco-test", "fuoco.db"), cfg.DatabasePath)
	assert.Equal(t, "http://gpu-box:11434", cfg.Model.Endpoint)
}

func TestRuntimeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120*time.Second, cfg.RuntimeTimeout())

	cfg.Model.Timeout = "bogus"
	assert.Equal(t, 2*time.Minute, cfg.RuntimeTimeout())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing model id", func(c *Config) { c.Model.ID = "" }},
		{"missing model version", func(c *Config) { c.Model.Version = "" }},
		{"inverted pacer band", func(c *Config) { c.Pacer.MinIntervalMs = 50; c.Pacer.MaxIntervalMs = 10 }},
		{"zero max tokens", func(c *Config) { c.Generation.MaxTokens = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
