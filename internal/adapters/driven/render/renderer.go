// Package render turns the final Markdown of a run into its delivered
// forms: a themed, sanitized HTML page and a PDF.
package render

import (
	"fmt"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Renderer produces HTML and PDF with the theme of the requested style.
type Renderer struct {
	html *HTMLRenderer
	pdf  *PDFRenderer
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{html: NewHTMLRenderer(), pdf: NewPDFRenderer()}
}

// Render produces both forms of markdown.
func (r *Renderer) Render(markdown, title string, style domain.Style, assetDir string) (*domain.Rendered, error) {
	style = style.OrDefault()
	theme := ThemeFor(style)

	page, err := r.html.Page(markdown, title, theme)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	doc, err := r.pdf.Render(markdown, title, theme, assetDir)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return &domain.Rendered{Title: title, Style: style, HTML: page, PDF: doc}, nil
}
