package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)
	svc.SetEnv(func(key string) string { return env[key] })
	return svc, store
}

func TestSettingsService_Defaults(t *testing.T) {
	svc, _ := newTestSettings(nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, domain.ImageProviderLocal, settings.Image.Provider)
	assert.Equal(t, domain.DefaultPipelineConfig(), settings.Pipeline)
	assert.Equal(t, ".", settings.Paths.DataDir)
	assert.Equal(t, filepath.Join(".", "rag"), settings.Paths.RAGFolder)
	assert.Equal(t, filepath.Join(".", "output"), settings.Paths.OutputDir)
	assert.NoError(t, svc.Validate())
}

func TestSettingsService_ReadsConfig(t *testing.T) {
	svc, store := newTestSettings(nil)
	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("llm.api_key", "sk-ant"))
	require.NoError(t, store.Set("local_llm.provider", "ollama"))
	require.NoError(t, store.Set("local_llm.model", "phi3"))
	require.NoError(t, store.Set("pipeline.max_iterations", "5"))
	require.NoError(t, store.Set("pipeline.call_timeout", "90s"))
	require.NoError(t, store.Set("paths.data_dir", "/data"))

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)
	assert.Equal(t, "phi3", settings.LocalLLM.Model)
	assert.Equal(t, 5, settings.Pipeline.MaxIterations)
	assert.Equal(t, 90*time.Second, settings.Pipeline.CallTimeout)
	assert.Equal(t, filepath.Join("/data", "rag"), settings.Paths.RAGFolder)
}

func TestSettingsService_ProviderDefaultModels(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"openai", "gpt-4o"},
		{"anthropic", "claude-3-5-sonnet-latest"},
		{"gemini", domain.DefaultLLMModels()[domain.AIProviderGemini]},
		{"ollama", "llama3.2"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			svc, store := newTestSettings(nil)
			require.NoError(t, store.Set("llm.provider", tt.provider))

			settings, err := svc.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.want, settings.LLM.Model)
		})
	}

	t.Run("explicit model wins", func(t *testing.T) {
		svc, store := newTestSettings(nil)
		require.NoError(t, store.Set("llm.provider", "openai"))
		require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))

		settings, err := svc.Get()
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", settings.LLM.Model)
	})

	t.Run("embedding and local models", func(t *testing.T) {
		svc, store := newTestSettings(nil)
		require.NoError(t, store.Set("embedding.provider", "openai"))
		require.NoError(t, store.Set("local_llm.provider", "ollama"))

		settings, err := svc.Get()
		require.NoError(t, err)
		assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
		assert.Equal(t, "llama3.2", settings.LocalLLM.Model)
	})
}

func TestSettingsService_EnvOverrides(t *testing.T) {
	svc, store := newTestSettings(map[string]string{
		EnvLLMProvider: "openai",
		EnvOpenAIKey:   "sk-env",
		EnvOllamaURL:   "http://gpu:11434",
		EnvComfyUIURL:  "http://gpu:8188",
		EnvGitHubToken: "ghp_x",
		EnvOutputDir:   "/tmp/out",
	})
	require.NoError(t, store.Set("local_llm.provider", "ollama"))

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, "sk-env", settings.LLM.APIKey)
	assert.Equal(t, "http://gpu:11434", settings.LocalLLM.BaseURL)
	assert.Equal(t, "http://gpu:8188", settings.Image.ComfyUIURL)
	assert.Equal(t, "sk-env", settings.Image.APIKey)
	assert.Equal(t, "ghp_x", settings.GitHubToken)
	assert.Equal(t, "/tmp/out", settings.Paths.OutputDir)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	svc, store := newTestSettings(map[string]string{EnvAnthropicKey: "from-env"})

	err := svc.SetLLMProvider(domain.AIProvider("bogus"), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = svc.SetLLMProvider(domain.AIProviderOpenAI, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "openai needs a key")

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderAnthropic, "", ""))
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, "claude-3-5-sonnet-latest", store.GetString("llm.model"))
	assert.Empty(t, store.GetString("llm.api_key"), "env keys are not written to disk")
	assert.Equal(t, 1, store.Saves())

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderOllama, "mistral", ""))
	assert.Equal(t, "http://localhost:11434", store.GetString("llm.base_url"))
	assert.Equal(t, "mistral", store.GetString("llm.model"))
}

func TestSettingsService_SetLocalLLMProvider(t *testing.T) {
	svc, store := newTestSettings(nil)

	assert.ErrorIs(t, svc.SetLocalLLMProvider(domain.AIProviderOpenAI, ""), domain.ErrInvalidArgument)

	require.NoError(t, svc.SetLocalLLMProvider(domain.AIProviderOllama, ""))
	assert.Equal(t, "ollama", store.GetString("local_llm.provider"))
	assert.Equal(t, "llama3.2", store.GetString("local_llm.model"))
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	svc, store := newTestSettings(nil)

	assert.ErrorIs(t, svc.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "k"), domain.ErrInvalidArgument)
	assert.ErrorIs(t, svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidArgument)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk"))
	assert.Equal(t, "text-embedding-3-small", store.GetString("embedding.model"))
	assert.Empty(t, store.GetString("embedding.base_url"))
}

func TestSettingsService_SetImageProvider(t *testing.T) {
	svc, store := newTestSettings(nil)

	assert.ErrorIs(t, svc.SetImageProvider(domain.ImageProvider("dalle"), ""), domain.ErrInvalidArgument)
	require.NoError(t, svc.SetImageProvider(domain.ImageProviderNone, ""))
	assert.Equal(t, "none", store.GetString("image.provider"))
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"cloud llm without key", map[string]any{"llm.provider": "gemini"}},
		{"embedding without key", map[string]any{"embedding.provider": "openai"}},
		{"chunk size above threshold", map[string]any{"pipeline.chunk_size": 20000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestSettings(nil)
			for k, v := range tt.values {
				require.NoError(t, store.Set(k, v))
			}
			assert.ErrorIs(t, svc.Validate(), domain.ErrInvalidArgument)
		})
	}
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	svc, _ := newTestSettings(nil)
	settings := svc.GetDefaults()
	settings.Pipeline.MaxIterations = 4
	settings.Pipeline.CallTimeout = 2 * time.Minute
	settings.Paths.DataDir = "/srv/tf"

	require.NoError(t, svc.Save(&settings))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 4, got.Pipeline.MaxIterations)
	assert.Equal(t, 2*time.Minute, got.Pipeline.CallTimeout)
	assert.Equal(t, "/srv/tf", got.Paths.DataDir)
}
