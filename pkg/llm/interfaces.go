// Package llm provides generative-model clients for AI enrichment.
package llm

import "context"

// GenerateOptions bound a single generation call. Enrichment always runs at
// low temperature with a hard output cap and a JSON-only response format.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// LLMClient is the interface enrichment depends on. Use it for dependency
// injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse sends a prompt and returns the raw response text.
	// Implementations request a JSON-constrained response when the backing
	// API supports it.
	GenerateResponse(ctx context.Context, prompt, systemMessage string, opts GenerateOptions) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}
