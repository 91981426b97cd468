package driven

import (
	"context"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// LLMService is a single language model backend.
//
// Implementations may include:
//   - OpenAI (GPT-4o)
//   - Anthropic (Claude)
//   - Gemini
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a completion for prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// System is the system prompt. Empty means provider default.
	System string

	// JSON asks the backend to answer with a single JSON object.
	JSON bool

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// AIConfigValidator checks provider settings by contacting the provider.
type AIConfigValidator interface {
	// ValidateLLM pings the configured LLM backend. Unconfigured settings pass.
	ValidateLLM(config *domain.LLMSettings) error

	// ValidateEmbedding pings the configured embedding backend.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
