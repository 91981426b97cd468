// Package web provides the HTTP(S) page connector.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/custodia-labs/tutorforge/internal/connectors"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "tutorforge/1.0 (+https://github.com/custodia-labs/tutorforge)"
	DefaultMaxBody   = 20 << 20
)

// Config holds configuration for the web connector.
type Config struct {
	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBody bounds the response size in bytes (default: 20 MiB).
	MaxBody int64
}

// Connector fetches pages and files over HTTP.
type Connector struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// New creates a web connector.
func New(cfg Config) *Connector {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	return &Connector{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBody,
	}
}

// Kind returns domain.SourceKindURL.
func (c *Connector) Kind() domain.SourceKind {
	return domain.SourceKindURL
}

// Fetch performs a GET on source.
func (c *Connector) Fetch(ctx context.Context, source string) (*domain.RawDocument, error) {
	u, err := url.Parse(strings.TrimSpace(source))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", domain.ErrFetch, source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/markdown,text/plain,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", domain.ErrFetch, source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", domain.ErrFetch, resp.StatusCode, source)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", domain.ErrFetch, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrFetch, source, c.maxBody)
	}

	name := pageName(resp.Request.URL)
	mimeType := connectors.BaseMIMEType(resp.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = connectors.DetectMIMEType(name, body)
	}

	return &domain.RawDocument{
		Source:   source,
		Name:     name,
		MIMEType: mimeType,
		Content:  body,
	}, nil
}

// pageName is the last path segment of u, or its host for a bare domain.
func pageName(u *url.URL) string {
	if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
		return base
	}
	return u.Hostname()
}
