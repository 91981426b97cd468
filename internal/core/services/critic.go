package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/prompts"
)

// Verdict is the critic's judgement of a draft.
type Verdict struct {
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback"`
}

// CriticReviewer judges drafts against the target style.
type CriticReviewer struct {
	gen     driven.Generator
	prompts driven.PromptStore
	timeout time.Duration
}

// NewCriticReviewer creates a reviewer. promptStore may be nil.
func NewCriticReviewer(gen driven.Generator, promptStore driven.PromptStore, timeout time.Duration) *CriticReviewer {
	return &CriticReviewer{gen: gen, prompts: promptStore, timeout: timeout}
}

// Review returns the verdict on the current draft. There is no local retry.
func (c *CriticReviewer) Review(ctx context.Context, state *domain.PipelineState) (Verdict, error) {
	if state.IterationCount == 0 {
		return Verdict{}, fmt.Errorf("%w: no draft to review", domain.ErrInvalidArgument)
	}

	callCtx, cancel := callContext(ctx, c.timeout)
	defer cancel()

	res := generateStructured[Verdict](callCtx, c.gen,
		criticPrompt(state),
		prompts.Resolve(c.prompts, driven.PromptCritic),
		domain.TaskCritic)
	if !res.OK() {
		return Verdict{}, res.Err
	}
	res.Value.Feedback = strings.TrimSpace(res.Value.Feedback)
	return res.Value, nil
}

func criticPrompt(state *domain.PipelineState) string {
	return fmt.Sprintf("Goal: rewrite for the %s style (%s).\n\nCurrent draft:\n%s",
		state.Style, state.Style.Description(), state.RewrittenContent)
}
