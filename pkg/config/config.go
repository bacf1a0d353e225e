package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Agents     AgentsConfig     `yaml:"agents" mapstructure:"agents"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Ingestion  IngestionConfig  `yaml:"ingestion" mapstructure:"ingestion"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// LLMConfig holds language-model provider settings.
type LLMConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey        string        `yaml:"api_key" mapstructure:"api_key"`
	PrimaryModel  string        `yaml:"primary_model" mapstructure:"primary_model"`
	FallbackModel string        `yaml:"fallback_model" mapstructure:"fallback_model"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// RequestsPerSecond bounds the client-side call rate to the provider.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// AgentsConfig holds agent execution settings.
type AgentsConfig struct {
	// ConfidenceThreshold is the minimum acceptable model certainty.
	// Results below it are treated as failures and retried on the
	// fallback model.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	ClassifyTemperature float64 `yaml:"classify_temperature" mapstructure:"classify_temperature"`
	DraftTemperature    float64 `yaml:"draft_temperature" mapstructure:"draft_temperature"`
	ClassifyMaxTokens   int     `yaml:"classify_max_tokens" mapstructure:"classify_max_tokens"`
	DraftMaxTokens      int     `yaml:"draft_max_tokens" mapstructure:"draft_max_tokens"`
}

// CacheConfig holds result-cache settings.
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries" mapstructure:"max_entries"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl"`

	// Optional Redis layer behind the in-memory cache.
	RedisEnabled  bool   `yaml:"redis_enabled" mapstructure:"redis_enabled"`
	RedisHost     string `yaml:"redis_host" mapstructure:"redis_host"`
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
}

// IngestionConfig holds ingestion source settings.
type IngestionConfig struct {
	// Mock serves canned Gmail/Twilio messages instead of calling real APIs.
	Mock       bool `yaml:"mock" mapstructure:"mock"`
	MaxRetries int  `yaml:"max_retries" mapstructure:"max_retries"`
}

// MonitoringConfig holds observability settings.
type MonitoringConfig struct {
	Prometheus struct {
		Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	} `yaml:"prometheus" mapstructure:"prometheus"`
	Logging struct {
		Level  string `yaml:"level" mapstructure:"level"`
		Format string `yaml:"format" mapstructure:"format"`
	} `yaml:"logging" mapstructure:"logging"`
}

// Load reads the configuration from an optional file plus environment
// variables, applying defaults for everything unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TRIAGENT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration with every default applied and no
// file or environment overrides.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.openai.com")
	v.SetDefault("llm.primary_model", "gpt-4")
	v.SetDefault("llm.fallback_model", "gpt-3.5-turbo")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.requests_per_second", 10.0)

	// Agents defaults
	v.SetDefault("agents.confidence_threshold", 0.7)
	v.SetDefault("agents.classify_temperature", 0.2)
	v.SetDefault("agents.draft_temperature", 0.4)
	v.SetDefault("agents.classify_max_tokens", 300)
	v.SetDefault("agents.draft_max_tokens", 300)

	// Cache defaults
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.redis_enabled", false)
	v.SetDefault("cache.redis_host", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// Ingestion defaults
	v.SetDefault("ingestion.mock", true)
	v.SetDefault("ingestion.max_retries", 3)

	// Monitoring defaults
	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.logging.level", "info")
	v.SetDefault("monitoring.logging.format", "json")
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.LLM.PrimaryModel == "" {
		return fmt.Errorf("llm.primary_model must be set")
	}
	if c.LLM.FallbackModel == "" {
		return fmt.Errorf("llm.fallback_model must be set")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}

	if c.Agents.ConfidenceThreshold < 0 || c.Agents.ConfidenceThreshold > 1 {
		return fmt.Errorf("agents.confidence_threshold must be in [0,1], got %f", c.Agents.ConfidenceThreshold)
	}

	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}

	return nil
}
