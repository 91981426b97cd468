package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// PlaceholderPattern matches illustration placeholders. The tag is
// case-sensitive and the description is matched non-greedily.
var PlaceholderPattern = regexp.MustCompile(`\[\[IMG_SUGGESTION:(.*?)\]\]`)

// ImageResolver replaces illustration placeholders with generated images.
// A failed placeholder keeps its original tag; the others are still resolved.
type ImageResolver struct {
	gen     driven.ImageGenerator
	writer  driven.ArtifactWriter
	timeout time.Duration
}

// NewImageResolver creates a resolver. With a nil generator or writer,
// every placeholder is left in place.
func NewImageResolver(gen driven.ImageGenerator, writer driven.ArtifactWriter, timeout time.Duration) *ImageResolver {
	return &ImageResolver{gen: gen, writer: writer, timeout: timeout}
}

// Resolve rewrites state.RewrittenContent, resolving placeholders in order
// of appearance, and records each resolved image in state.Images.
func (r *ImageResolver) Resolve(ctx context.Context, state *domain.PipelineState) {
	content := state.RewrittenContent
	matches := PlaceholderPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return
	}
	if r.gen == nil || r.writer == nil {
		logger.Warn("images: no image backend, leaving %d placeholders", len(matches))
		return
	}

	var b strings.Builder
	last := 0
	for i, m := range matches {
		b.WriteString(content[last:m[0]])
		last = m[1]

		tag := content[m[0]:m[1]]
		desc := strings.TrimSpace(content[m[2]:m[3]])

		path, err := r.resolveOne(ctx, state, i, desc)
		if err != nil {
			logger.Warn("images: placeholder %d left unresolved: %v", i, err)
			b.WriteString(tag)
			continue
		}

		fmt.Fprintf(&b, "![%s](%s)", desc, path)
		state.Images = append(state.Images, domain.ImageRef{Index: i, Description: desc, Path: path})
	}
	b.WriteString(content[last:])

	logger.Debug("images: %d/%d placeholders resolved", len(state.Images), len(matches))
	state.RewrittenContent = b.String()
}

func (r *ImageResolver) resolveOne(ctx context.Context, state *domain.PipelineState, index int, desc string) (string, error) {
	if desc == "" {
		return "", errors.New("empty description")
	}

	callCtx, cancel := callContext(ctx, r.timeout)
	defer cancel()

	data, err := r.gen.Generate(callCtx, desc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.gen.Name(), err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s: %w: empty image", r.gen.Name(), domain.ErrImageUnavailable)
	}

	return r.writer.Write(callCtx, ImageName(state, index, data), data)
}

// ImageName returns the artifact name of the placeholder at index. The
// extension follows the image format; unknown formats are named .png.
func ImageName(state *domain.PipelineState, index int, data []byte) string {
	ext := ".png"
	if http.DetectContentType(data) == "image/jpeg" {
		ext = ".jpg"
	}
	return fmt.Sprintf("image_%s_%s_%d%s", state.ShortRunID(), state.Style, index, ext)
}
