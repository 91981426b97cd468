package domain

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// ImageProvider selects the image generation strategy.
type ImageProvider string

// Available image providers.
const (
	// ImageProviderLocal tries ComfyUI first and falls back to the remote API.
	ImageProviderLocal ImageProvider = "local"

	// ImageProviderRemote uses the remote image API only.
	ImageProviderRemote ImageProvider = "remote"

	// ImageProviderNone disables image generation; placeholders stay in place.
	ImageProviderNone ImageProvider = "none"
)

// IsValid returns true if the image provider is recognised.
func (p ImageProvider) IsValid() bool {
	switch p {
	case ImageProviderLocal, ImageProviderRemote, ImageProviderNone:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p ImageProvider) String() string {
	return string(p)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider != AIProviderOllama && e.Provider != AIProviderOpenAI {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, or an OpenAI-compatible proxy).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic/Gemini).
	APIKey string

	// RequestsPerMinute paces calls to this backend. Zero means unlimited.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ImageSettings holds image generation configuration.
type ImageSettings struct {
	// Provider selects the strategy.
	Provider ImageProvider

	// ComfyUIURL is the local ComfyUI base URL.
	ComfyUIURL string

	// Checkpoint is the ComfyUI model checkpoint name.
	Checkpoint string

	// RemoteURL is the OpenAI-compatible images API base URL.
	RemoteURL string

	// RemoteModel is the remote image model.
	RemoteModel string

	// APIKey is the remote API key.
	APIKey string
}

// PathSettings holds filesystem locations.
type PathSettings struct {
	// DataDir holds the knowledge database.
	DataDir string

	// RAGFolder is scanned by the knowledge indexer.
	RAGFolder string

	// OutputDir receives rendered tutorials and images.
	OutputDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM is the primary backend, used for quality-critical tasks.
	LLM LLMSettings

	// LocalLLM is the cheap backend for simple tasks. Optional.
	LocalLLM LLMSettings

	// Embedding holds embedding provider settings. Optional.
	Embedding EmbeddingSettings

	// Image holds image generation settings.
	Image ImageSettings

	// GitHubToken authenticates github: sources. Optional.
	GitHubToken string

	// Paths holds filesystem locations.
	Paths PathSettings

	// Pipeline holds pipeline bounds.
	Pipeline PipelineConfig
}

// DefaultAppSettings returns settings with sensible defaults.
// The primary LLM defaults to a local Ollama instance so the tool works
// without any API key.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		Image: ImageSettings{
			Provider:   ImageProviderLocal,
			ComfyUIURL: "http://localhost:8188",
			Checkpoint: "flux1-schnell.safetensors",
		},
		Pipeline: DefaultPipelineConfig(),
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}
