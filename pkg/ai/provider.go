// Package ai talks to language-model completion APIs: one-shot analysis of
// scan results and dork generation.
package ai

import (
	"context"
	"fmt"
)

// CompletionRequest is the full request contract for a single completion.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Provider defines the interface for different completion APIs. Callers own
// the provider and must Close it when done.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	ListModels(ctx context.Context) ([]string, error)
	Close() error
}

// NewProvider builds a provider by name.
func NewProvider(ctx context.Context, providerName, apiKey, modelName string) (Provider, error) {
	switch providerName {
	case "gemini":
		return NewGeminiProvider(ctx, apiKey, modelName)
	case "openai":
		return NewOpenAIProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
}
