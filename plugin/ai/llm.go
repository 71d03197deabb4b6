package ai

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// NewClient creates an OpenAI-compatible chat client.
func NewClient(cfg *LLMConfig) (*openai.Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig), nil
}
