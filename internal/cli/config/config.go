// Package config loads merkit's configuration from merkit.yml with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/merkit/merkit/internal/llm"
)

// Config represents the merkit configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// LLMConfig selects and configures the completion provider.
type LLMConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	APIKeyEnv  string `mapstructure:"api_key_env"`
	MaxRetries int    `mapstructure:"max_retries"`
	TimeoutSec int    `mapstructure:"timeout_seconds"`
}

// CacheConfig configures the optional Redis completion cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	TTLMin  int    `mapstructure:"ttl_minutes"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// PipelineConfig tunes the inference passes.
type PipelineConfig struct {
	// PassAttempts is the total completion calls per pass before the
	// runner degrades to a fallback result.
	PassAttempts int `mapstructure:"pass_attempts"`
}

// Load loads the configuration from merkit.yml or merkit.yaml in the
// working directory, falling back to defaults when no file exists.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("llm.provider", string(llm.ProviderClaude))
	v.SetDefault("llm.model", "claude-opus-4-20250514")
	v.SetDefault("llm.api_key_env", "")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.ttl_minutes", 0)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("pipeline.pass_attempts", 2)

	v.SetConfigName("merkit")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(c *Config) error {
	switch llm.ProviderType(c.LLM.Provider) {
	case llm.ProviderClaude, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch concurrency must be >= 1, got %d", c.Batch.Concurrency)
	}
	if c.Pipeline.PassAttempts < 1 {
		return fmt.Errorf("pipeline pass attempts must be >= 1, got %d", c.Pipeline.PassAttempts)
	}
	return nil
}

// ProviderConfig resolves the completion provider configuration, reading
// the API key from the configured environment variable (defaulting to the
// provider's conventional one).
func (c *Config) ProviderConfig() llm.ProviderConfig {
	keyEnv := c.LLM.APIKeyEnv
	if keyEnv == "" {
		if llm.ProviderType(c.LLM.Provider) == llm.ProviderOpenAI {
			keyEnv = "OPENAI_API_KEY"
		} else {
			keyEnv = "ANTHROPIC_API_KEY"
		}
	}

	return llm.ProviderConfig{
		Type:       llm.ProviderType(c.LLM.Provider),
		Model:      c.LLM.Model,
		APIKey:     os.Getenv(keyEnv),
		Timeout:    time.Duration(c.LLM.TimeoutSec) * time.Second,
		MaxRetries: c.LLM.MaxRetries,
	}
}

// CacheTTL returns the configured cache entry lifetime; zero means entries
// never expire.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMin) * time.Minute
}
