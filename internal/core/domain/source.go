package domain

import "strings"

// SourceKind classifies where a document comes from.
type SourceKind string

// Source kinds.
const (
	SourceKindURL    SourceKind = "url"
	SourceKindFile   SourceKind = "file"
	SourceKindGitHub SourceKind = "github"
)

// GitHubSourcePrefix marks a "github:owner/repo/path[@ref]" source.
const GitHubSourcePrefix = "github:"

// ClassifySource returns the kind of a source string.
func ClassifySource(source string) SourceKind {
	s := strings.TrimSpace(source)
	switch {
	case strings.HasPrefix(s, GitHubSourcePrefix):
		return SourceKindGitHub
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return SourceKindURL
	default:
		return SourceKindFile
	}
}

// RawDocument is a fetched source before text extraction.
type RawDocument struct {
	// Source is the original URL, path or GitHub reference.
	Source string

	// Name is the file or page name used as a last-resort title.
	Name string

	// MIMEType is the detected content type without parameters.
	MIMEType string

	Content []byte
}

// SourceDocument is the text produced by ingestion.
type SourceDocument struct {
	// Source is the original URL, path or GitHub reference.
	Source string

	// Title is the best-effort document title.
	Title string

	// Content is Markdown or plain text.
	Content string

	// MIMEType is the detected input type.
	MIMEType string
}

// Rendered is a document rendered for delivery.
type Rendered struct {
	Title string
	Style Style
	HTML  string
	PDF   []byte
}

// ConvertRequest describes one end-to-end conversion.
type ConvertRequest struct {
	// Source is a URL, local path or GitHub reference. Ignored if Content is set.
	Source string

	// Content is raw text supplied directly.
	Content string

	// Title overrides the ingested title.
	Title string

	Style         Style
	CustomPrompt  string
	OutputOptions []OutputOption
}

// ConvertResult reports where a conversion's artifacts were written.
type ConvertResult struct {
	RunID        string    `json:"run_id"`
	Title        string    `json:"title"`
	Style        Style     `json:"style"`
	Markdown     string    `json:"markdown"`
	MarkdownPath string    `json:"markdown_path"`
	HTMLPath     string    `json:"html_path"`
	PDFPath      string    `json:"pdf_path"`
	Iterations   int       `json:"iterations"`
	Status       RunStatus `json:"status"`
	Images       int       `json:"images"`
	GlossarySize int       `json:"glossary_size"`
}
