package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

type convertFixture struct {
	gen      *mockGenerator
	ingestor *mockIngestor
	renderer *mockRenderer
	writer   *mockArtifactWriter
	svc      *ConvertService
}

func newConvertFixture() *convertFixture {
	f := &convertFixture{
		gen:      &mockGenerator{},
		ingestor: &mockIngestor{docs: map[string]*domain.SourceDocument{}},
		renderer: &mockRenderer{},
		writer:   newMockArtifactWriter(),
	}
	f.svc = NewConvertService(f.ingestor, newTestPipeline(f.gen), f.renderer, f.writer)
	f.svc.SetIDGenerator(func() string { return "3f2a9c1e-7b44-4d1a-9e0f-1c2b3a4d5e6f" })
	return f
}

func TestConvertService_InlineContent(t *testing.T) {
	f := newConvertFixture()
	rec := &eventRecorder{}

	res, err := f.svc.Convert(context.Background(), domain.ConvertRequest{
		Content: "Some raw notes.",
		Style:   domain.StyleUndergrad,
	}, rec)
	require.NoError(t, err)

	assert.Equal(t, "3f2a9c1e-7b44-4d1a-9e0f-1c2b3a4d5e6f", res.RunID)
	assert.Equal(t, "Draft 1", res.Title, "title from the first heading")
	assert.Equal(t, domain.StyleUndergrad, res.Style)
	assert.Equal(t, domain.RunStatusApproved, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, filepath.Join("/out", "tutorial_3f2a9c1e.md"), res.MarkdownPath)
	assert.Equal(t, filepath.Join("/out", "tutorial_3f2a9c1e.html"), res.HTMLPath)
	assert.Equal(t, filepath.Join("/out", "tutorial_3f2a9c1e.pdf"), res.PDFPath)

	assert.ElementsMatch(t, []string{"tutorial_3f2a9c1e.md", "tutorial_3f2a9c1e.html", "tutorial_3f2a9c1e.pdf"}, f.writer.names())
	assert.Equal(t, res.Markdown, string(f.writer.files["tutorial_3f2a9c1e.md"]))
	assert.Equal(t, "%PDF-1.3", string(f.writer.files["tutorial_3f2a9c1e.pdf"]))
	assert.NotEmpty(t, rec.stages())
}

func TestConvertService_TitlePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		reqTitle string
		docTitle string
		draft    string
		want     string
	}{
		{"request title wins", "Mine", "Doc", "# Heading", "Mine"},
		{"document title", "", "Doc", "# Heading", "Doc"},
		{"first heading", "", "", "intro\n\n## Second Level ##\n", "Second Level"},
		{"default", "", "", "no headings here", defaultTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConvertFixture()
			f.gen.rewrite = func(genCall, int) (string, error) { return tt.draft, nil }
			f.ingestor.docs["doc.md"] = &domain.SourceDocument{Source: "doc.md", Title: tt.docTitle, Content: "body"}

			res, err := f.svc.Convert(context.Background(), domain.ConvertRequest{
				Source: "doc.md",
				Title:  tt.reqTitle,
				Style:  domain.StylePro,
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Title)
			assert.Equal(t, tt.want, f.renderer.title)
		})
	}
}

func TestConvertService_Errors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		f := newConvertFixture()
		_, err := f.svc.Convert(context.Background(), domain.ConvertRequest{Style: domain.StylePro}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("ingest failure", func(t *testing.T) {
		f := newConvertFixture()
		f.ingestor.fail = map[string]error{"https://x.test": domain.ErrFetch}
		_, err := f.svc.Convert(context.Background(), domain.ConvertRequest{Source: "https://x.test"}, nil)
		assert.ErrorIs(t, err, domain.ErrFetch)
		assert.Contains(t, err.Error(), "ingest https://x.test")
		assert.Empty(t, f.gen.calls)
	})

	t.Run("empty document", func(t *testing.T) {
		f := newConvertFixture()
		f.ingestor.docs["blank.txt"] = &domain.SourceDocument{Source: "blank.txt", Content: "  \n"}
		_, err := f.svc.Convert(context.Background(), domain.ConvertRequest{Source: "blank.txt"}, nil)
		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("pipeline failure", func(t *testing.T) {
		f := newConvertFixture()
		f.gen.clean = func(genCall) (string, error) { return "", domain.ErrExternalService }
		_, err := f.svc.Convert(context.Background(), domain.ConvertRequest{Content: "x"}, nil)

		var stageErr *domain.StageError
		require.True(t, errors.As(err, &stageErr))
		assert.Equal(t, domain.StageClean, stageErr.Stage)
		assert.Empty(t, f.writer.names())
	})

	t.Run("render failure", func(t *testing.T) {
		f := newConvertFixture()
		f.renderer.err = errors.New("bad font")
		_, err := f.svc.Convert(context.Background(), domain.ConvertRequest{Content: "x"}, nil)
		assert.ErrorContains(t, err, "render: bad font")
		assert.Empty(t, f.writer.names())
	})

	t.Run("write failure", func(t *testing.T) {
		f := newConvertFixture()
		f.writer.err = domain.ErrResourceWrite
		_, err := f.svc.Convert(context.Background(), domain.ConvertRequest{Content: "x"}, nil)
		assert.ErrorIs(t, err, domain.ErrResourceWrite)
	})

	t.Run("missing renderer", func(t *testing.T) {
		svc := NewConvertService(nil, newTestPipeline(&mockGenerator{}), nil, newMockArtifactWriter())
		_, err := svc.Convert(context.Background(), domain.ConvertRequest{Content: "x"}, nil)
		assert.Error(t, err)
	})
}

func TestArtifactBase(t *testing.T) {
	assert.Equal(t, "tutorial_3f2a9c1e", ArtifactBase("3f2a9c1e-7b44-4d1a"))
	assert.Equal(t, "tutorial_abcd1234", ArtifactBase("ab-cd-12-34-56"))
	assert.Equal(t, "tutorial_short", ArtifactBase("short"))
}
