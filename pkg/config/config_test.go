package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gpt-4", cfg.LLM.PrimaryModel)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.FallbackModel)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0.7, cfg.Agents.ConfidenceThreshold)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.True(t, cfg.Ingestion.Mock)
	assert.True(t, cfg.Monitoring.Prometheus.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  port: 9090
llm:
  primary_model: gpt-4o
agents:
  confidence_threshold: 0.8
cache:
  max_entries: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.LLM.PrimaryModel)
	assert.Equal(t, 0.8, cfg.Agents.ConfidenceThreshold)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)

	// Unset settings keep their defaults.
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.FallbackModel)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(c *Config)
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"missing primary model", func(c *Config) { c.LLM.PrimaryModel = "" }},
		{"missing fallback model", func(c *Config) { c.LLM.FallbackModel = "" }},
		{"zero timeout", func(c *Config) { c.LLM.Timeout = 0 }},
		{"threshold above one", func(c *Config) { c.Agents.ConfidenceThreshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Agents.ConfidenceThreshold = -0.1 }},
		{"zero cache entries", func(c *Config) { c.Cache.MaxEntries = 0 }},
		{"zero cache ttl", func(c *Config) { c.Cache.TTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
