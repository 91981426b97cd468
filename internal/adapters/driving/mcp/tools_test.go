package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

func TestServer_handleConvert(t *testing.T) {
	ctx := context.Background()

	t.Run("converts a source", func(t *testing.T) {
		convert := &mockConvertService{
			result: &domain.ConvertResult{
				RunID:        "run-1",
				Title:        "Heaps",
				Style:        domain.StyleKids,
				Markdown:     "# Heaps",
				MarkdownPath: "out/heaps.md",
				HTMLPath:     "out/heaps.html",
				PDFPath:      "out/heaps.pdf",
				Iterations:   2,
				Status:       domain.RunStatusApproved,
				Images:       1,
			},
		}
		ports := validPorts()
		ports.Convert = convert
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleConvert(ctx, nil, ConvertInput{
			Source:  "notes.md",
			Style:   "kids",
			Options: []string{"glossary", "bogus", "code_examples"},
			Title:   "Heaps",
		})
		require.NoError(t, err)

		assert.Equal(t, "run-1", output.RunID)
		assert.Equal(t, "kids", output.Style)
		assert.Equal(t, string(domain.RunStatusApproved), output.Status)
		assert.Equal(t, 2, output.Iterations)
		assert.Equal(t, "out/heaps.pdf", output.PDFPath)
		assert.Equal(t, "# Heaps", output.Markdown)

		assert.Equal(t, "notes.md", convert.lastReq.Source)
		assert.Equal(t, domain.StyleKids, convert.lastReq.Style)
		assert.Equal(t, domain.ParseOutputOptions([]string{"glossary", "code_examples"}), convert.lastReq.OutputOptions)
	})

	t.Run("unknown style falls back to default", func(t *testing.T) {
		convert := &mockConvertService{result: &domain.ConvertResult{}}
		ports := validPorts()
		ports.Convert = convert
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleConvert(ctx, nil, ConvertInput{Content: "text", Style: "pirate"})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultStyle, convert.lastReq.Style)
	})

	t.Run("requires source or content", func(t *testing.T) {
		server, err := NewServer(validPorts())
		require.NoError(t, err)

		_, _, err = server.handleConvert(ctx, nil, ConvertInput{Style: "pro"})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("returns error on conversion failure", func(t *testing.T) {
		ports := validPorts()
		ports.Convert = &mockConvertService{err: domain.ErrLLMUnavailable}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleConvert(ctx, nil, ConvertInput{Content: "text"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns hits", func(t *testing.T) {
		knowledge := &mockKnowledgeService{
			hits: []domain.KnowledgeHit{{
				Item: domain.KnowledgeItem{
					ID:   "glossary_heap",
					Text: "Heap: a tree with the heap property",
					Metadata: map[string]string{
						domain.MetaType:   domain.KnowledgeTypeGlossary,
						domain.MetaSource: "notes.md",
					},
				},
				Score: 0.87,
			}},
		}
		ports := validPorts()
		ports.Knowledge = knowledge
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Query: "heap", Limit: 3, Type: domain.KnowledgeTypeGlossary})
		require.NoError(t, err)

		require.Equal(t, 1, output.Count)
		assert.Equal(t, "glossary_heap", output.Results[0].ID)
		assert.Equal(t, domain.KnowledgeTypeGlossary, output.Results[0].Type)
		assert.Equal(t, "notes.md", output.Results[0].Source)
		assert.Equal(t, 0.87, output.Results[0].Score)
		assert.Equal(t, 3, knowledge.lastK)
		assert.Equal(t, domain.KnowledgeTypeGlossary, knowledge.lastType)
	})

	t.Run("default limit", func(t *testing.T) {
		knowledge := &mockKnowledgeService{}
		ports := validPorts()
		ports.Knowledge = knowledge
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Query: "heap"})
		require.NoError(t, err)
		assert.Zero(t, output.Count)
		assert.Empty(t, output.Results)
		assert.Equal(t, defaultQueryLimit, knowledge.lastK)
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		ports := validPorts()
		ports.Knowledge = &mockKnowledgeService{err: errors.New("embedding down")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleQuery(ctx, nil, QueryInput{Query: "heap"})
		assert.EqualError(t, err, "embedding down")
	})
}

func TestServer_handleIndex(t *testing.T) {
	knowledge := &mockKnowledgeService{stats: domain.IndexStats{Indexed: 3, Skipped: 1}}
	ports := validPorts()
	ports.Knowledge = knowledge
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, stats, err := server.handleIndex(context.Background(), nil, IndexInput{Force: true})
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStats{Indexed: 3, Skipped: 1}, stats)
	assert.True(t, knowledge.lastForce)
}
