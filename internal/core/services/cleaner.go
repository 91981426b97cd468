package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
	"github.com/custodia-labs/tutorforge/internal/prompts"
)

// Cleaner strips navigation, ads and other noise from raw input.
type Cleaner struct {
	gen     driven.Generator
	prompts driven.PromptStore
	timeout time.Duration
}

// NewCleaner creates a cleaner. promptStore may be nil.
func NewCleaner(gen driven.Generator, promptStore driven.PromptStore, timeout time.Duration) *Cleaner {
	return &Cleaner{gen: gen, prompts: promptStore, timeout: timeout}
}

// Clean sets state.CleanedContent. Failures are returned unchanged so the
// controller can abort the run.
func (c *Cleaner) Clean(ctx context.Context, state *domain.PipelineState) error {
	if strings.TrimSpace(state.RawContent) == "" {
		return fmt.Errorf("%w: raw content is empty", domain.ErrInvalidArgument)
	}

	callCtx, cancel := callContext(ctx, c.timeout)
	defer cancel()

	out, err := c.gen.GenerateText(callCtx,
		"Clean this content:\n\n"+state.RawContent,
		prompts.Resolve(c.prompts, driven.PromptClean),
		domain.TaskClean)
	if err != nil {
		return err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return fmt.Errorf("%w: cleaner returned no content", domain.ErrExternalService)
	}

	logger.Debug("cleaned content: %d -> %d chars", len(state.RawContent), len(out))
	state.CleanedContent = out
	return nil
}

// callContext bounds a single external call. A zero timeout only adds
// cancellation.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
