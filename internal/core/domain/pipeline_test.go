package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPipelineState_NormalisesInputs(t *testing.T) {
	state := NewPipelineState("0123456789abcdef", "raw", Style("weird"), "be brief",
		[]OutputOption{OptionGlossary, OptionCodeExamples})

	assert.Equal(t, StylePro, state.Style)
	assert.Equal(t, []OutputOption{OptionCodeExamples, OptionGlossary}, state.OutputOptions)
	assert.Equal(t, 0, state.IterationCount)
	assert.Empty(t, state.CleanedContent)
	assert.Empty(t, state.RewrittenContent)
	assert.Nil(t, state.GlossaryTerms)
	assert.False(t, state.Approved)
	assert.Equal(t, RunStatusPending, state.Status)
	assert.Equal(t, "01234567", state.ShortRunID())
}

func TestPipelineState_ShortRunID_Short(t *testing.T) {
	state := &PipelineState{RunID: "abc"}
	assert.Equal(t, "abc", state.ShortRunID())
}

func TestPipelineConfig_WithDefaults(t *testing.T) {
	cfg := PipelineConfig{MaxIterations: 5}.WithDefaults()

	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, 15000, cfg.ChunkThreshold)
	assert.Equal(t, 4000, cfg.ChunkSize)
	assert.Equal(t, 300, cfg.CarryoverChars)
	assert.Equal(t, 3, cfg.RetrievalTopK)
	assert.Equal(t, time.Duration(0), cfg.CallTimeout)
}

func TestStage_IsTerminal(t *testing.T) {
	assert.True(t, StageDone.IsTerminal())
	assert.False(t, StageImages.IsTerminal())
}

func TestChunk_PromptText(t *testing.T) {
	assert.Equal(t, "body", Chunk{Text: "body"}.PromptText())
	assert.Equal(t, "## Setup\n\nbody", Chunk{Text: "body", HeadingContext: "## Setup"}.PromptText())
}

func TestClassifySource(t *testing.T) {
	assert.Equal(t, SourceKindURL, ClassifySource("https://example.com/a"))
	assert.Equal(t, SourceKindGitHub, ClassifySource("github:owner/repo/README.md"))
	assert.Equal(t, SourceKindFile, ClassifySource("./notes.md"))
}
