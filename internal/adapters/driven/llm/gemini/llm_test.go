package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGenerateConfig(t *testing.T) {
	cfg := generateConfig(driven.GenerateOptions{System: "sys", JSON: true, MaxTokens: 100, Temperature: 0.5})

	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, "sys", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Equal(t, int32(100), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.5, *cfg.Temperature, 1e-6)

	empty := generateConfig(driven.GenerateOptions{})
	assert.Nil(t, empty.SystemInstruction)
	assert.Nil(t, empty.Temperature)
	assert.Empty(t, empty.ResponseMIMEType)
}
