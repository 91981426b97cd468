package image

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// Ensure Chain implements the interface.
var _ driven.ImageGenerator = (*Chain)(nil)

// Chain tries each backend in order and returns the first image.
type Chain struct {
	backends []driven.ImageGenerator
}

// NewChain creates a fallback chain. Nil backends are skipped.
func NewChain(backends ...driven.ImageGenerator) *Chain {
	c := &Chain{}
	for _, b := range backends {
		if b != nil {
			c.backends = append(c.backends, b)
		}
	}
	return c
}

// Name lists the backends in order.
func (c *Chain) Name() string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return strings.Join(names, ">")
}

// Generate returns the first successful image. When every backend fails
// the error joins all failures and matches domain.ErrImageUnavailable.
func (c *Chain) Generate(ctx context.Context, description string) ([]byte, error) {
	errs := []error{domain.ErrImageUnavailable}
	for _, b := range c.backends {
		data, err := b.Generate(ctx, description)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		if err == nil {
			err = errors.New("empty image")
		}
		logger.Warn("images: %s failed: %v", b.Name(), err)
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

// New builds the generator for provider. ImageProviderNone returns nil.
func New(settings domain.ImageSettings) driven.ImageGenerator {
	remote := NewRemote(RemoteConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.RemoteURL,
		Model:   settings.RemoteModel,
	})

	switch settings.Provider {
	case domain.ImageProviderNone:
		return nil
	case domain.ImageProviderRemote:
		return remote
	default:
		local := NewComfyUI(ComfyUIConfig{BaseURL: settings.ComfyUIURL, Checkpoint: settings.Checkpoint})
		return NewChain(local, remote)
	}
}
