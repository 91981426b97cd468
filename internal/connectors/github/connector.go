package github

import (
	"context"
	"fmt"
	"path"

	"github.com/custodia-labs/tutorforge/internal/connectors"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches files from GitHub repositories.
type Connector struct {
	client *Client
}

// New creates a GitHub connector.
func New(client *Client) *Connector {
	return &Connector{client: client}
}

// Kind returns domain.SourceKindGitHub.
func (c *Connector) Kind() domain.SourceKind {
	return domain.SourceKindGitHub
}

// Fetch reads the file named by a github: source, or the README when the
// source has no path.
func (c *Connector) Fetch(ctx context.Context, source string) (*domain.RawDocument, error) {
	src, err := ParseSource(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	var (
		content []byte
		name    string
	)
	if src.Path == "" {
		content, name, err = c.client.GetReadme(ctx, src.Owner, src.Repo, src.Ref)
		if name == "" {
			name = "README.md"
		}
	} else {
		content, err = c.client.GetFile(ctx, src.Owner, src.Repo, src.Path, src.Ref)
		name = path.Base(src.Path)
	}
	if err != nil {
		return nil, fetchError(src, err)
	}

	quota := c.client.RateLimiter()
	logger.Debug("github: fetched %s, %d/%d requests left", src, quota.Remaining(), quota.Limit())

	return &domain.RawDocument{
		Source:   source,
		Name:     name,
		MIMEType: connectors.DetectMIMEType(name, content),
		Content:  content,
	}, nil
}

// fetchError wraps a client error in domain.ErrFetch. Exhausted quotas
// also match domain.ErrRateLimited.
func fetchError(src Source, err error) error {
	switch {
	case IsRateLimited(err):
		return fmt.Errorf("%w: %w: %s: %w", domain.ErrFetch, domain.ErrRateLimited, src, err)
	case IsUnauthorized(err):
		return fmt.Errorf("%w: %s: %w (check GITHUB_TOKEN)", domain.ErrFetch, src, err)
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrFetch, src, err)
	}
}
