package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMRPM           = "llm.requests_per_minute"
	keyLocalProvider    = "local_llm.provider"
	keyLocalModel       = "local_llm.model"
	keyLocalBaseURL     = "local_llm.base_url"
	keyLocalRPM         = "local_llm.requests_per_minute"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyImageProvider    = "image.provider"
	keyImageComfyUI     = "image.comfyui_url"
	keyImageCheckpoint  = "image.checkpoint"
	keyImageRemoteURL   = "image.remote_url"
	keyImageRemoteModel = "image.remote_model"
	keyImageAPIKey      = "image.api_key"
	keyGitHubToken      = "github.token"
	keyDataDir          = "paths.data_dir"
	keyRAGFolder        = "paths.rag_folder"
	keyOutputDir        = "paths.output_dir"
	keyMaxIterations    = "pipeline.max_iterations"
	keyChunkThreshold   = "pipeline.chunk_threshold"
	keyChunkSize        = "pipeline.chunk_size"
	keyCallTimeout      = "pipeline.call_timeout"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvLLMProvider  = "TUTORFORGE_LLM_PROVIDER"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvOllamaURL    = "OLLAMA_BASE_URL"
	EnvComfyUIURL   = "COMFYUI_BASE_URL"
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvRAGFolder    = "TUTORFORGE_RAG_FOLDER"
	EnvOutputDir    = "TUTORFORGE_OUTPUT_DIR"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
//
// Values resolve in order: built-in defaults, the config file, then
// environment variables. Environment overrides are never saved.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// SetEnv replaces the environment lookup.
func (s *SettingsService) SetEnv(getenv func(string) string) {
	if getenv != nil {
		s.getenv = getenv
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.fromConfig()
	s.applyEnv(settings)
	s.fillPaths(settings)
	return settings, nil
}

// fromConfig reads the config file over the defaults.
func (s *SettingsService) fromConfig() *domain.AppSettings {
	d := domain.DefaultAppSettings()
	llmProvider := s.getProvider(keyLLMProvider, d.LLM.Provider)
	localProvider := s.getProvider(keyLocalProvider, "")
	embedProvider := s.getProvider(keyEmbedProvider, "")

	return &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          llmProvider,
			Model:             s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.configStore.GetInt(keyLLMRPM),
		},
		LocalLLM: domain.LLMSettings{
			Provider:          localProvider,
			Model:             s.getString(keyLocalModel, domain.DefaultLLMModels()[localProvider]),
			BaseURL:           s.configStore.GetString(keyLocalBaseURL),
			RequestsPerMinute: s.configStore.GetInt(keyLocalRPM),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Image: domain.ImageSettings{
			Provider:    s.getImageProvider(d.Image.Provider),
			ComfyUIURL:  s.getString(keyImageComfyUI, d.Image.ComfyUIURL),
			Checkpoint:  s.getString(keyImageCheckpoint, d.Image.Checkpoint),
			RemoteURL:   s.configStore.GetString(keyImageRemoteURL),
			RemoteModel: s.configStore.GetString(keyImageRemoteModel),
			APIKey:      s.configStore.GetString(keyImageAPIKey),
		},
		GitHubToken: s.configStore.GetString(keyGitHubToken),
		Paths: domain.PathSettings{
			DataDir:   s.configStore.GetString(keyDataDir),
			RAGFolder: s.configStore.GetString(keyRAGFolder),
			OutputDir: s.configStore.GetString(keyOutputDir),
		},
		Pipeline: s.pipelineConfig(d.Pipeline),
	}
}

func (s *SettingsService) pipelineConfig(d domain.PipelineConfig) domain.PipelineConfig {
	cfg := d
	cfg.MaxIterations = s.getInt(keyMaxIterations, d.MaxIterations)
	cfg.ChunkThreshold = s.getInt(keyChunkThreshold, d.ChunkThreshold)
	cfg.ChunkSize = s.getInt(keyChunkSize, d.ChunkSize)
	if t := s.configStore.GetDuration(keyCallTimeout); t > 0 {
		cfg.CallTimeout = t
	}
	return cfg
}

// applyEnv overlays environment variables.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if p := domain.AIProvider(s.getenv(EnvLLMProvider)); p.IsValid() && p != settings.LLM.Provider {
		settings.LLM.Provider = p
		settings.LLM.Model = domain.DefaultLLMModels()[p]
		settings.LLM.BaseURL = ""
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.providerKey(settings.LLM.Provider)
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.providerKey(settings.Embedding.Provider)
	}
	if settings.Image.APIKey == "" {
		settings.Image.APIKey = s.getenv(EnvOpenAIKey)
	}

	if v := s.getenv(EnvOllamaURL); v != "" {
		for _, llm := range []*domain.LLMSettings{&settings.LLM, &settings.LocalLLM} {
			if llm.Provider == domain.AIProviderOllama {
				llm.BaseURL = v
			}
		}
		if settings.Embedding.Provider == domain.AIProviderOllama {
			settings.Embedding.BaseURL = v
		}
	}
	if v := s.getenv(EnvComfyUIURL); v != "" {
		settings.Image.ComfyUIURL = v
	}
	if v := s.getenv(EnvGitHubToken); v != "" {
		settings.GitHubToken = v
	}
	if v := s.getenv(EnvRAGFolder); v != "" {
		settings.Paths.RAGFolder = v
	}
	if v := s.getenv(EnvOutputDir); v != "" {
		settings.Paths.OutputDir = v
	}
}

// providerKey returns the API key environment variable of a cloud provider.
func (s *SettingsService) providerKey(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicKey)
	case domain.AIProviderGemini:
		return s.getenv(EnvGeminiKey)
	default:
		return ""
	}
}

// fillPaths derives unset paths from the config file location.
func (s *SettingsService) fillPaths(settings *domain.AppSettings) {
	if settings.Paths.DataDir == "" {
		settings.Paths.DataDir = filepath.Dir(s.configStore.Path())
	}
	if settings.Paths.RAGFolder == "" {
		settings.Paths.RAGFolder = filepath.Join(settings.Paths.DataDir, "rag")
	}
	if settings.Paths.OutputDir == "" {
		settings.Paths.OutputDir = filepath.Join(settings.Paths.DataDir, "output")
	}
}

// Save persists settings exactly as given. The setters below start from
// the config file alone, so environment overrides are not copied to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyLLMRPM, settings.LLM.RequestsPerMinute},
		{keyLocalProvider, settings.LocalLLM.Provider.String()},
		{keyLocalModel, settings.LocalLLM.Model},
		{keyLocalBaseURL, settings.LocalLLM.BaseURL},
		{keyLocalRPM, settings.LocalLLM.RequestsPerMinute},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyImageProvider, settings.Image.Provider.String()},
		{keyImageComfyUI, settings.Image.ComfyUIURL},
		{keyImageCheckpoint, settings.Image.Checkpoint},
		{keyImageRemoteURL, settings.Image.RemoteURL},
		{keyImageRemoteModel, settings.Image.RemoteModel},
		{keyImageAPIKey, settings.Image.APIKey},
		{keyGitHubToken, settings.GitHubToken},
		{keyDataDir, settings.Paths.DataDir},
		{keyRAGFolder, settings.Paths.RAGFolder},
		{keyOutputDir, settings.Paths.OutputDir},
		{keyMaxIterations, settings.Pipeline.MaxIterations},
		{keyChunkThreshold, settings.Pipeline.ChunkThreshold},
		{keyChunkSize, settings.Pipeline.ChunkSize},
		{keyCallTimeout, settings.Pipeline.CallTimeout.String()},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// SetLLMProvider configures the primary LLM.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidArgument, provider)
	}

	settings := s.fromConfig()
	if provider.RequiresAPIKey() && apiKey == "" && s.providerKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidArgument, provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetLocalLLMProvider configures the backend for simple tasks. Only local
// providers are accepted.
func (s *SettingsService) SetLocalLLMProvider(provider domain.AIProvider, model string) error {
	if !provider.IsLocal() {
		return fmt.Errorf("%w: %s is not a local provider", domain.ErrInvalidArgument, provider)
	}

	settings := s.fromConfig()
	settings.LocalLLM.Provider = provider
	settings.LocalLLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LocalLLM.BaseURL = baseURLFor(provider, settings.LocalLLM.BaseURL)

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidArgument, provider)
	}

	settings := s.fromConfig()
	if provider.RequiresAPIKey() && apiKey == "" && s.providerKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidArgument, provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetImageProvider configures image generation.
func (s *SettingsService) SetImageProvider(provider domain.ImageProvider, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid image provider: %s", domain.ErrInvalidArgument, provider)
	}

	settings := s.fromConfig()
	settings.Image.Provider = provider
	if apiKey != "" {
		settings.Image.APIKey = apiKey
	}
	return s.Save(settings)
}

// Validate checks that the current settings can drive a conversion.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured", domain.ErrInvalidArgument, settings.LLM.Provider)
	}
	if settings.LocalLLM.Provider != "" && !settings.LocalLLM.IsConfigured() {
		return fmt.Errorf("%w: local LLM provider %q is not configured", domain.ErrInvalidArgument, settings.LocalLLM.Provider)
	}
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrInvalidArgument, settings.Embedding.Provider)
	}
	if !settings.Image.Provider.IsValid() {
		return fmt.Errorf("%w: invalid image provider: %s", domain.ErrInvalidArgument, settings.Image.Provider)
	}
	if settings.Pipeline.MaxIterations < 1 {
		return fmt.Errorf("%w: pipeline.max_iterations must be at least 1", domain.ErrInvalidArgument)
	}
	if settings.Pipeline.ChunkSize > settings.Pipeline.ChunkThreshold {
		return fmt.Errorf("%w: pipeline.chunk_size (%d) exceeds pipeline.chunk_threshold (%d)",
			domain.ErrInvalidArgument, settings.Pipeline.ChunkSize, settings.Pipeline.ChunkThreshold)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		// TOML written by hand may quote numbers.
		if n, err := strconv.Atoi(s.configStore.GetString(key)); err == nil && n > 0 {
			return n
		}
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getImageProvider(defaultVal domain.ImageProvider) domain.ImageProvider {
	provider := domain.ImageProvider(s.configStore.GetString(keyImageProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom URL for local providers and clears it for
// cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}
