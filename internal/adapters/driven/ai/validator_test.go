package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_NilAndUnconfigured(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateEmbedding(nil))
	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Model: "test-model"}))
	assert.NoError(t, validator.ValidateLLM(nil))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Model: "test-model"}))
}

func TestConfigValidator_RejectsMissingKey(t *testing.T) {
	validator := NewConfigValidator()

	assert.ErrorIs(t, validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderGemini}),
		domain.ErrLLMUnavailable)
	assert.Error(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}))
}

func TestConfigValidator_PingTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	defer close(release)

	validator := NewConfigValidator(WithPingTimeout(50 * time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, validator.timeout)

	start := time.Now()
	err := validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestConfigValidator_ZeroTimeoutKeepsDefault(t *testing.T) {
	assert.Equal(t, pingTimeout, NewConfigValidator(WithPingTimeout(0)).timeout)
}

func TestConfigValidator_ReachableOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.NoError(t, NewConfigValidator().ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	}))
}

func TestConfigValidator_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	validator := NewConfigValidator()

	err := validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "unreachable")

	err = validator.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestConfigValidator_UnsupportedEmbeddingProvider(t *testing.T) {
	err := NewConfigValidator().ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderGemini})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
