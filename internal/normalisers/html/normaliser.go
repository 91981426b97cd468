package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// noiseSelectors are removed before the content container is chosen.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer", "header", "aside",
	"iframe", "video", "audio", "svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement", ".cookie-banner",
}

// containers are tried in order; the first present one holds the content.
var containers = []string{"main", "article", "[role=main]", "#content", "body"}

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Normalise extracts the main content of an HTML page as Markdown.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.SourceDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidArgument
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %w", domain.ErrParse, err)
	}

	title := pageTitle(doc)
	if title == "" {
		title = normalisers.TitleFromName(raw.Name)
	}

	fragment, err := mainContent(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParse, err)
	}

	content := ""
	if fragment != "" {
		content, err = htmltomarkdown.ConvertString(fragment)
		if err != nil {
			return nil, fmt.Errorf("%w: convert html to markdown: %w", domain.ErrParse, err)
		}
	}

	return &domain.SourceDocument{
		Source:   raw.Source,
		Title:    title,
		Content:  strings.TrimSpace(content),
		MIMEType: raw.MIMEType,
	}, nil
}

// pageTitle prefers og:title, then <title>, then the first <h1>.
func pageTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// mainContent removes noise and serializes the best content container.
// An empty page yields an empty fragment.
func mainContent(doc *goquery.Document) (string, error) {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	for _, sel := range containers {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		if strings.TrimSpace(found.First().Text()) == "" {
			return "", nil
		}
		out, err := goquery.OuterHtml(found.First())
		if err != nil {
			return "", fmt.Errorf("serialize content: %w", err)
		}
		return out, nil
	}
	return "", nil
}
