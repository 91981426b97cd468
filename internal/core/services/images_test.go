package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

func imageState(draft string) *domain.PipelineState {
	s := domain.NewPipelineState("0123456789", "raw", domain.StyleKids, "", nil)
	s.RewrittenContent = draft
	return s
}

func TestImageResolver_AllResolved(t *testing.T) {
	gen := &mockImageGenerator{}
	w := newMockArtifactWriter()
	r := NewImageResolver(gen, w, 0)
	state := imageState("Intro [[IMG_SUGGESTION: a cat]] middle [[IMG_SUGGESTION:a dog]] end")

	r.Resolve(context.Background(), state)

	assert.Equal(t,
		"Intro ![a cat](image_01234567_kids_0.png) middle ![a dog](image_01234567_kids_1.png) end",
		state.RewrittenContent)
	assert.NotRegexp(t, PlaceholderPattern, state.RewrittenContent)
	assert.Equal(t, []string{"a cat", "a dog"}, gen.calls)
	require.Len(t, state.Images, 2)
	assert.Equal(t, domain.ImageRef{Index: 1, Description: "a dog", Path: "image_01234567_kids_1.png"}, state.Images[1])
	assert.ElementsMatch(t, []string{"image_01234567_kids_0.png", "image_01234567_kids_1.png"}, w.names())
}

func TestImageResolver_PartialFailureKeepsTag(t *testing.T) {
	gen := &mockImageGenerator{fail: map[string]bool{"b": true}}
	r := NewImageResolver(gen, newMockArtifactWriter(), 0)
	state := imageState("[[IMG_SUGGESTION:a]] [[IMG_SUGGESTION:b]] [[IMG_SUGGESTION:c]]")

	r.Resolve(context.Background(), state)

	assert.Equal(t,
		"![a](image_01234567_kids_0.png) [[IMG_SUGGESTION:b]] ![c](image_01234567_kids_2.png)",
		state.RewrittenContent)
	assert.Len(t, PlaceholderPattern.FindAllString(state.RewrittenContent, -1), 1)
	assert.Len(t, state.Images, 2)
}

func TestImageResolver_DuplicatePlaceholders(t *testing.T) {
	gen := &mockImageGenerator{}
	r := NewImageResolver(gen, newMockArtifactWriter(), 0)
	state := imageState("[[IMG_SUGGESTION:x]][[IMG_SUGGESTION:x]]")

	r.Resolve(context.Background(), state)

	assert.Equal(t, "![x](image_01234567_kids_0.png)![x](image_01234567_kids_1.png)", state.RewrittenContent)
	assert.Len(t, gen.calls, 2)
}

func TestImageResolver_EmptyDescriptionUnresolved(t *testing.T) {
	gen := &mockImageGenerator{}
	r := NewImageResolver(gen, newMockArtifactWriter(), 0)
	state := imageState("a [[IMG_SUGGESTION:  ]] b")

	r.Resolve(context.Background(), state)

	assert.Equal(t, "a [[IMG_SUGGESTION:  ]] b", state.RewrittenContent)
	assert.Empty(t, gen.calls)
}

func TestImageResolver_NoBackendLeavesPlaceholders(t *testing.T) {
	draft := "x [[IMG_SUGGESTION:a]] y"

	state := imageState(draft)
	NewImageResolver(nil, newMockArtifactWriter(), 0).Resolve(context.Background(), state)
	assert.Equal(t, draft, state.RewrittenContent)

	state = imageState(draft)
	NewImageResolver(&mockImageGenerator{}, nil, 0).Resolve(context.Background(), state)
	assert.Equal(t, draft, state.RewrittenContent)
	assert.Empty(t, state.Images)
}

func TestImageResolver_WriterFailure(t *testing.T) {
	w := newMockArtifactWriter()
	w.err = errors.New("read-only filesystem")
	r := NewImageResolver(&mockImageGenerator{}, w, 0)
	state := imageState("[[IMG_SUGGESTION:a]]")

	r.Resolve(context.Background(), state)

	assert.Equal(t, "[[IMG_SUGGESTION:a]]", state.RewrittenContent)
	assert.Empty(t, state.Images)
}

func TestImageResolver_NoPlaceholders(t *testing.T) {
	gen := &mockImageGenerator{}
	state := imageState("plain text [[img_suggestion:lowercase]]")
	NewImageResolver(gen, newMockArtifactWriter(), 0).Resolve(context.Background(), state)
	assert.Equal(t, "plain text [[img_suggestion:lowercase]]", state.RewrittenContent)
	assert.Empty(t, gen.calls)
}

func TestImageName(t *testing.T) {
	state := imageState("")
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

	assert.Equal(t, "image_01234567_kids_3.png", ImageName(state, 3, []byte("\x89PNG\r\n\x1a\n")))
	assert.Equal(t, "image_01234567_kids_0.jpg", ImageName(state, 0, jpeg))
	assert.Equal(t, "image_01234567_kids_0.png", ImageName(state, 0, []byte("unknown")))
}
