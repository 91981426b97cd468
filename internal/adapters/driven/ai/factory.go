// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/tutorforge/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/tutorforge/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/generation"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/image"
	anthropicllm "github.com/custodia-labs/tutorforge/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/tutorforge/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/tutorforge/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/tutorforge/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from application settings.
// Any field may be nil when the matching provider is not configured.
type InitResult struct {
	Primary          driven.LLMService
	Local            driven.LLMService
	EmbeddingService driven.EmbeddingService
	Generator        *generation.Generator
	Images           driven.ImageGenerator
	Warnings         []string // Non-fatal issues; the affected feature is disabled.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.Primary != nil {
		r.Primary.Close()
	}
	if r.Local != nil {
		r.Local.Close()
	}
}

// Init builds every AI service named in settings. Construction failures
// become warnings: a missing primary backend makes every generation call
// fail with domain.ErrLLMUnavailable instead of failing startup.
// Services are not pinged.
func Init(ctx context.Context, settings *domain.AppSettings) *InitResult {
	result := &InitResult{}

	primary, err := CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		result.warn("primary LLM disabled: %v", err)
	}
	result.Primary = generation.Pace(primary, settings.LLM.RequestsPerMinute)

	if settings.LocalLLM.Provider != "" {
		local, err := CreateLLMService(ctx, &settings.LocalLLM)
		if err != nil {
			result.warn("local LLM disabled: %v", err)
		}
		result.Local = generation.Pace(local, settings.LocalLLM.RequestsPerMinute)
	}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.warn("embeddings disabled, knowledge ranking is lexical: %v", err)
	}
	result.EmbeddingService = embedder

	result.Generator = generation.NewGenerator(generation.NewRouter(result.Primary, result.Local))
	result.Images = image.New(settings.Image)
	return result
}

func (r *InitResult) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// CreateEmbeddingService creates the embedding service named by settings.
// Returns nil, nil if no provider is set.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic, domain.AIProviderGemini:
		return nil, fmt.Errorf("%w: %s does not provide embeddings, use ollama or openai",
			domain.ErrInvalidArgument, settings.Provider)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrInvalidArgument, settings.Provider)
	}
}

// CreateLLMService creates the LLM service named by settings.
// Returns nil, nil if no provider is set.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	case domain.AIProviderGemini:
		return createGeminiLLM(ctx, settings)

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrInvalidArgument, settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func createGeminiLLM(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := geminillm.NewLLMService(ctx, geminillm.Config{
		APIKey: settings.APIKey,
		Model:  settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
