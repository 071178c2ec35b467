// Package llm provides the text-completion clients used by the inference
// pipeline. The pipeline depends only on the Client interface; concrete
// providers are selected from configuration and injected, never hard-wired
// into pipeline stages.
package llm

import (
	"fmt"
	"time"
)

// ProviderType identifies a completion provider.
type ProviderType string

const (
	// ProviderClaude is Anthropic's messages API.
	ProviderClaude ProviderType = "claude"

	// ProviderOpenAI is OpenAI's chat completions API.
	ProviderOpenAI ProviderType = "openai"
)

// ProviderConfig holds configuration for a single completion provider.
type ProviderConfig struct {
	// Type is the provider type (claude, openai).
	Type ProviderType

	// Model is the specific model to use.
	Model string

	// APIKey is the authentication key for the provider.
	APIKey string

	// Timeout is the timeout for API calls to this provider.
	Timeout time.Duration

	// MaxRetries is the number of times to retry failed HTTP requests.
	MaxRetries int
}

// Validate checks that the configuration is usable.
func (c ProviderConfig) Validate() error {
	switch c.Type {
	case ProviderClaude, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider type: %q", c.Type)
	}
	if c.Model == "" {
		return fmt.Errorf("provider %s: model is required", c.Type)
	}
	if c.APIKey == "" {
		return fmt.Errorf("provider %s: API key is required", c.Type)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("provider %s: max retries must be >= 0", c.Type)
	}
	return nil
}

// withDefaults fills zero values with usable defaults.
func (c ProviderConfig) withDefaults() ProviderConfig {
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}
