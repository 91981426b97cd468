package driven

import (
	"context"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// Ingestor turns a source into text.
// Failures wrap domain.ErrFetch or domain.ErrParse.
type Ingestor interface {
	Parse(ctx context.Context, source string) (*domain.SourceDocument, error)
}

// Connector retrieves the raw bytes behind one kind of source.
// Failures wrap domain.ErrFetch.
type Connector interface {
	// Kind returns the source kind this connector serves.
	Kind() domain.SourceKind

	// Fetch reads source.
	Fetch(ctx context.Context, source string) (*domain.RawDocument, error)
}

// Normaliser converts fetched bytes of a given MIME type into text.
// Failures wrap domain.ErrParse.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Normalise extracts the document text and title.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.SourceDocument, error)
}
