package llm

import "context"

// MockLLMClient is a configurable mock for testing enrichment behavior.
// Set the function field to control responses; nil returns empty content.
type MockLLMClient struct {
	// GenerateResponseFunc is called when GenerateResponse is invoked.
	GenerateResponseFunc func(ctx context.Context, prompt, systemMessage string, opts GenerateOptions) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification.
	GenerateResponseCalls int
	LastPrompt            string
	LastSystemMessage     string
}

var _ LLMClient = (*MockLLMClient)(nil)

// NewMockLLMClient creates a new mock with sensible defaults.
func NewMockLLMClient() *MockLLMClient {
	return &MockLLMClient{Model: "mock-model"}
}

// GenerateResponse implements LLMClient.
func (m *MockLLMClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, opts GenerateOptions) (string, error) {
	m.GenerateResponseCalls++
	m.LastPrompt = prompt
	m.LastSystemMessage = systemMessage
	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, prompt, systemMessage, opts)
	}
	return "", nil
}

// GetModel implements LLMClient.
func (m *MockLLMClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}
