package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	for _, args := range [][]string{{"settings"}, {"settings", "show"}} {
		out, _, err := execute(t, "", args...)
		require.NoError(t, err)
		assert.Contains(t, out, "[LLM]")
		assert.Contains(t, out, "Provider: Ollama (local)")
		assert.Contains(t, out, "lexical retrieval only")
		assert.Contains(t, out, "[Routing]")
		assert.Contains(t, out, "rewrite: LLM (ollama)")
		assert.Contains(t, out, "Max iterations: 3")
		assert.Contains(t, out, "Configuration is valid.")
	}
}

func TestRouteLabel(t *testing.T) {
	both := &domain.AppSettings{
		LLM:      domain.LLMSettings{Provider: domain.AIProviderOpenAI},
		LocalLLM: domain.LLMSettings{Provider: domain.AIProviderOllama},
	}
	primaryOnly := &domain.AppSettings{LLM: domain.LLMSettings{Provider: domain.AIProviderOpenAI}}

	assert.Equal(t, "LLM (openai)", routeLabel(domain.TaskRewrite, both))
	assert.Equal(t, "LLM (openai)", routeLabel(domain.TaskCritic, both))
	assert.Equal(t, "Local LLM (ollama)", routeLabel(domain.TaskClean, both))
	assert.Equal(t, "Local LLM (ollama)", routeLabel(domain.TaskGlossary, both))
	assert.Equal(t, "LLM (openai)", routeLabel(domain.TaskClean, primaryOnly))
	assert.Equal(t, "(unavailable)", routeLabel(domain.TaskRewrite, &domain.AppSettings{}))
}

func TestSettingsShowCmd_Warning(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	require.NoError(t, ts.config.Set("llm.provider", "openai"))

	out, _, err := execute(t, "", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Warning:")
}

func TestSettingsLLMCmd_Flags(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	out, _, err := execute(t, "", "settings", "llm", "--provider", "Anthropic", "--api-key", "sk-ant-key")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", ts.config.GetString("llm.provider"))
	assert.Equal(t, "sk-ant-key", ts.config.GetString("llm.api_key"))
	assert.Equal(t, 1, ts.validator.llmCalls)
	assert.Contains(t, out, "Validating configuration... OK")
	assert.Contains(t, out, "LLM provider configured: Anthropic (cloud) (claude-3-5-sonnet-latest)")
}

func TestSettingsLLMCmd_NoValidate(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	_, _, err := execute(t, "", "settings", "llm", "--provider", "ollama", "--model", "mistral", "--no-validate")
	require.NoError(t, err)
	assert.Zero(t, ts.validator.llmCalls)
	assert.Equal(t, "mistral", ts.config.GetString("llm.model"))
}

func TestSettingsLLMCmd_UnknownProvider(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	_, _, err := execute(t, "", "settings", "llm", "--provider", "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Zero(t, ts.config.Saves())
}

func TestSettingsLLMCmd_Interactive(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	out, _, err := execute(t, "4\n\nsk-gemini-key\n", "settings", "llm")
	require.NoError(t, err)

	assert.Contains(t, out, "Select LLM Provider")
	assert.Contains(t, out, "4. Gemini (cloud)")
	assert.Equal(t, "gemini", ts.config.GetString("llm.provider"))
	assert.Equal(t, "sk-gemini-key", ts.config.GetString("llm.api_key"))
}

func TestSettingsLLMCmd_ValidationFails(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.validator.llmErr = errors.New("401 unauthorized")

	out, _, err := execute(t, "", "settings", "llm", "--provider", "openai", "--api-key", "sk-bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM configuration validation failed")
	assert.Contains(t, out, "FAILED: 401 unauthorized")
}

func TestSettingsLocalLLMCmd(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	_, _, err := execute(t, "", "settings", "local-llm", "--provider", "openai")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	out, _, err := execute(t, "", "settings", "local-llm", "--provider", "ollama", "--model", "phi3")
	require.NoError(t, err)
	assert.Equal(t, "phi3", ts.config.GetString("local_llm.model"))
	assert.Contains(t, out, "Local LLM configured: Ollama (local) (phi3)")
}

func TestSettingsEmbeddingCmd(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	out, _, err := execute(t, "", "settings", "embedding", "--provider", "openai", "--api-key", "sk-embed", "--no-validate")
	require.NoError(t, err)
	assert.Equal(t, "openai", ts.config.GetString("embedding.provider"))
	assert.Contains(t, out, "Embedding provider configured: OpenAI (cloud) (text-embedding-3-small)")
}

func TestSettingsImageCmd(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	out, _, err := execute(t, "", "settings", "image", "--provider", "none")
	require.NoError(t, err)
	assert.Equal(t, "none", ts.config.GetString("image.provider"))
	assert.Contains(t, out, "Image provider configured: none")

	_, _, err = execute(t, "", "settings", "image", "--provider", "dalle")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSettingsCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	_, _, err := execute(t, "", "settings", "show")
	assert.EqualError(t, err, "settings service not configured")
}

func TestDisplayKey(t *testing.T) {
	assert.Equal(t, "(not set)", displayKey(""))
	assert.Equal(t, "sk-1...cdef", displayKey("sk-1234567890abcdef"))
}
