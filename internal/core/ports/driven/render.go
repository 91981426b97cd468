package driven

import (
	"context"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// Renderer renders a Markdown document for delivery.
type Renderer interface {
	// Render produces the HTML and PDF forms of markdown.
	// Relative image references are resolved against assetDir.
	Render(markdown, title string, style domain.Style, assetDir string) (*domain.Rendered, error)
}

// ArtifactWriter persists generated files.
// Failures wrap domain.ErrResourceWrite.
type ArtifactWriter interface {
	// Write stores data under name and returns the path to reference it by,
	// relative to Dir.
	Write(ctx context.Context, name string, data []byte) (string, error)

	// Dir returns the directory artifacts are written to.
	Dir() string
}
