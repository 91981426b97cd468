// Package markdown provides a Normaliser for Markdown documents. The
// Markdown itself is kept; only YAML front matter is lifted out of the body.
package markdown

import (
	"bytes"
	"context"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const frontMatterFence = "---"

// frontMatter holds the fields read from a document header.
type frontMatter struct {
	Title string `yaml:"title"`
}

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Normalise strips front matter and picks a title from the front matter,
// the first H1 or the file name, in that order.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.SourceDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidArgument
	}

	meta, body := splitFrontMatter(raw.Content)

	title := meta.Title
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		title = normalisers.TitleFromName(raw.Name)
	}

	return &domain.SourceDocument{
		Source:   raw.Source,
		Title:    strings.TrimSpace(title),
		Content:  strings.TrimSpace(body),
		MIMEType: raw.MIMEType,
	}, nil
}

// splitFrontMatter separates a leading "---" YAML block from the body.
// Unparseable front matter is left in the body.
func splitFrontMatter(content []byte) (frontMatter, string) {
	var meta frontMatter
	text := strings.ReplaceAll(string(bytes.TrimPrefix(content, []byte("\ufeff"))), "\r\n", "\n")

	if !strings.HasPrefix(text, frontMatterFence+"\n") {
		return meta, text
	}
	rest := text[len(frontMatterFence)+1:]
	end := strings.Index(rest, "\n"+frontMatterFence)
	if end < 0 {
		return meta, text
	}
	header := rest[:end]
	body := rest[end+len(frontMatterFence)+1:]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return frontMatter{}, text
	}
	return meta, body
}

// firstHeading returns the text of the first "# " heading outside code fences.
func firstHeading(body string) string {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}
