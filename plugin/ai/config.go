package ai

import (
	"errors"

	"github.com/hrygo/tourdesk/internal/profile"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// Config represents AI configuration.
type Config struct {
	Enabled bool

	LLM LLMConfig
}

// LLMConfig represents LLM configuration for an OpenAI-compatible endpoint.
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string // empty means the OpenAI default
	MaxTokens   int    // default: 1024
	Temperature float32
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.IsLLMEnabled(),
	}
	if !cfg.Enabled {
		return cfg
	}

	model := p.OpenAIModel
	if model == "" {
		model = DefaultModel
	}
	cfg.LLM = LLMConfig{
		Model:     model,
		APIKey:    p.OpenAIAPIKey,
		BaseURL:   p.OpenAIBaseURL,
		MaxTokens: 1024,
		// Scheduling answers must be deterministic.
		Temperature: 0,
	}
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.LLM.Model == "" {
		return errors.New("LLM model is required")
	}
	return nil
}
