package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driving"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// Ensure ConvertService implements the interface.
var _ driving.ConvertService = (*ConvertService)(nil)

// defaultTitle is used when neither the request, the source nor the
// rewritten document provides a title.
const defaultTitle = "Converted Tutorial"

var firstHeadingRe = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+?)[ \t#]*$`)

// ConvertService runs ingest, pipeline and render for one document.
type ConvertService struct {
	ingestor driven.Ingestor
	pipeline driving.PipelineRunner
	renderer driven.Renderer
	writer   driven.ArtifactWriter
	newID    func() string
}

// NewConvertService creates a convert service. ingestor may be nil if
// every request carries its content inline.
func NewConvertService(
	ingestor driven.Ingestor,
	pipeline driving.PipelineRunner,
	renderer driven.Renderer,
	writer driven.ArtifactWriter,
) *ConvertService {
	return &ConvertService{
		ingestor: ingestor,
		pipeline: pipeline,
		renderer: renderer,
		writer:   writer,
		newID:    uuid.NewString,
	}
}

// SetIDGenerator replaces the run id generator.
func (s *ConvertService) SetIDGenerator(fn func() string) {
	if fn != nil {
		s.newID = fn
	}
}

// Convert ingests req, runs the pipeline and writes the Markdown, HTML and
// PDF artifacts.
func (s *ConvertService) Convert(
	ctx context.Context,
	req domain.ConvertRequest,
	progress driven.ProgressSink,
) (*domain.ConvertResult, error) {
	logger.Section("Convert")
	if s.renderer == nil || s.writer == nil {
		return nil, errors.New("convert: renderer and artifact writer are required")
	}

	doc, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	runID := s.newID()
	state := domain.NewPipelineState(runID, doc.Content, req.Style, req.CustomPrompt, req.OutputOptions)
	logger.Debug("run %s: %d chars, style %s, options %v", state.ShortRunID(), len(doc.Content), state.Style, state.OutputOptions)

	if err := s.pipeline.RunWithProgress(ctx, state, progress); err != nil {
		return nil, err
	}

	title := firstNonEmpty(req.Title, doc.Title, firstHeading(state.RewrittenContent), defaultTitle)
	rendered, err := s.renderer.Render(state.RewrittenContent, title, state.Style, s.writer.Dir())
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	base := ArtifactBase(runID)
	result := &domain.ConvertResult{
		RunID:        runID,
		Title:        title,
		Style:        state.Style,
		Markdown:     state.RewrittenContent,
		Iterations:   state.IterationCount,
		Status:       state.Status,
		Images:       len(state.Images),
		GlossarySize: len(state.GlossaryTerms),
	}

	writes := []struct {
		name string
		data []byte
		dest *string
	}{
		{base + ".md", []byte(state.RewrittenContent), &result.MarkdownPath},
		{base + ".html", []byte(rendered.HTML), &result.HTMLPath},
		{base + ".pdf", rendered.PDF, &result.PDFPath},
	}
	for _, w := range writes {
		path, err := s.writer.Write(ctx, w.name, w.data)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", w.name, err)
		}
		*w.dest = filepath.Join(s.writer.Dir(), path)
	}

	logger.Info("wrote %s", result.PDFPath)
	return result, nil
}

// load returns the request's raw document.
func (s *ConvertService) load(ctx context.Context, req domain.ConvertRequest) (*domain.SourceDocument, error) {
	if strings.TrimSpace(req.Content) != "" {
		return &domain.SourceDocument{Source: "inline", Title: req.Title, Content: req.Content, MIMEType: "text/plain"}, nil
	}
	if strings.TrimSpace(req.Source) == "" {
		return nil, fmt.Errorf("%w: a source or inline content is required", domain.ErrInvalidArgument)
	}
	if s.ingestor == nil {
		return nil, fmt.Errorf("%w: no ingestor configured", domain.ErrInvalidArgument)
	}

	doc, err := s.ingestor.Parse(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", req.Source, err)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("ingest %s: %w: no text found", req.Source, domain.ErrParse)
	}
	return doc, nil
}

// ArtifactBase returns the file name stem of a run's artifacts.
func ArtifactBase(runID string) string {
	hex := strings.ReplaceAll(runID, "-", "")
	if len(hex) > 8 {
		hex = hex[:8]
	}
	return "tutorial_" + hex
}

func firstHeading(markdown string) string {
	m := firstHeadingRe.FindStringSubmatch(markdown)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
