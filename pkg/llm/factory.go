package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/apperrors"
)

// Provider constants for AI backend selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ProviderConfig selects and configures an AI backend.
type ProviderConfig struct {
	Provider string // "openai" (any OpenAI-compatible endpoint) or "anthropic"
	Endpoint string // base URL for OpenAI-compatible endpoints
	Model    string
	APIKey   string
}

// NewClientForProvider creates an LLMClient for the configured provider.
func NewClientForProvider(cfg *ProviderConfig, logger *zap.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		client, err := NewClient(&Config{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil

	case ProviderAnthropic:
		client, err := NewAnthropicClient(cfg.APIKey, cfg.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil
	}

	return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedProvider, cfg.Provider)
}
