// Package filesystem provides the local file connector and a recursive
// directory watcher.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/tutorforge/internal/connectors"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// DefaultMaxFileSize bounds the files the connector will read.
const DefaultMaxFileSize int64 = 50 << 20

// Connector reads documents from the local filesystem.
type Connector struct {
	maxSize int64
}

// New creates a filesystem connector. A non-positive maxSize selects
// DefaultMaxFileSize.
func New(maxSize int64) *Connector {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Connector{maxSize: maxSize}
}

// Kind returns domain.SourceKindFile.
func (c *Connector) Kind() domain.SourceKind {
	return domain.SourceKindFile
}

// Fetch reads the file named by source. A file:// prefix is accepted.
func (c *Connector) Fetch(ctx context.Context, source string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	path := ResolvePath(source)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrFetch, path)
	}
	if info.Size() > c.maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", domain.ErrFetch, path, info.Size(), c.maxSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	return &domain.RawDocument{
		Source:   source,
		Name:     filepath.Base(path),
		MIMEType: connectors.DetectMIMEType(path, content),
		Content:  content,
	}, nil
}

// ResolvePath converts a file:// URI or bare path to a local path.
func ResolvePath(source string) string {
	source = strings.TrimSpace(source)
	if strings.HasPrefix(source, "file://") {
		return strings.TrimPrefix(source, "file://")
	}
	return source
}

// IsHidden reports whether a path element is a dotfile.
func IsHidden(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
