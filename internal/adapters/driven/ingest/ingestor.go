// Package ingest dispatches sources to connectors by kind and fetched
// bytes to normalisers by MIME type.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driven.Ingestor = (*Ingestor)(nil)

// fallbackMIMEType selects the normaliser for unregistered text/* types.
const fallbackMIMEType = "text/plain"

// Ingestor implements driven.Ingestor over registered connectors and
// normalisers.
type Ingestor struct {
	connectors  map[domain.SourceKind]driven.Connector
	normalisers map[string]driven.Normaliser
}

// New creates an empty Ingestor.
func New() *Ingestor {
	return &Ingestor{
		connectors:  make(map[domain.SourceKind]driven.Connector),
		normalisers: make(map[string]driven.Normaliser),
	}
}

// RegisterConnector adds c, replacing any connector of the same kind.
func (i *Ingestor) RegisterConnector(c driven.Connector) *Ingestor {
	i.connectors[c.Kind()] = c
	return i
}

// RegisterNormaliser adds n for each of its MIME types. Later
// registrations win.
func (i *Ingestor) RegisterNormaliser(n driven.Normaliser) *Ingestor {
	for _, mt := range n.SupportedMIMETypes() {
		i.normalisers[mt] = n
	}
	return i
}

// Parse fetches source and extracts its text.
func (i *Ingestor) Parse(ctx context.Context, source string) (*domain.SourceDocument, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", domain.ErrInvalidArgument)
	}

	kind := domain.ClassifySource(source)
	conn, ok := i.connectors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no connector for %s sources: %w", domain.ErrFetch, kind, domain.ErrUnsupportedType)
	}

	raw, err := conn.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	norm, err := i.normaliserFor(raw.MIMEType)
	if err != nil {
		return nil, err
	}

	logger.Debug("ingest: %s (%s, %d bytes) via %s", source, raw.MIMEType, len(raw.Content), kind)

	doc, err := norm.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}
	if doc.MIMEType == "" {
		doc.MIMEType = raw.MIMEType
	}
	return doc, nil
}

// Supports reports whether a normaliser is registered for mimeType.
func (i *Ingestor) Supports(mimeType string) bool {
	_, err := i.normaliserFor(mimeType)
	return err == nil
}

func (i *Ingestor) normaliserFor(mimeType string) (driven.Normaliser, error) {
	if n, ok := i.normalisers[mimeType]; ok {
		return n, nil
	}
	if strings.HasPrefix(mimeType, "text/") {
		if n, ok := i.normalisers[fallbackMIMEType]; ok {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: no normaliser for %q: %w", domain.ErrParse, mimeType, domain.ErrUnsupportedType)
}
