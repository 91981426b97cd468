package driving

import "github.com/custodia-labs/tutorforge/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the primary LLM backend.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLocalLLMProvider configures the backend for simple tasks.
	SetLocalLLMProvider(provider domain.AIProvider, model string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetImageProvider configures image generation.
	SetImageProvider(provider domain.ImageProvider, apiKey string) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
