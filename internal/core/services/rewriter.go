package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
	"github.com/custodia-labs/tutorforge/internal/postprocessors/chunker"
	"github.com/custodia-labs/tutorforge/internal/prompts"
)

// ChunkSeparator joins the rewritten chunks of a long document.
const ChunkSeparator = "\n\n---\n\n"

// StyleRewriter produces the audience-adapted draft.
//
// Content longer than the chunk threshold is rewritten chunk by chunk, in
// order, each chunk seeing the tail of the previous chunk's output.
type StyleRewriter struct {
	gen     driven.Generator
	store   driven.KnowledgeStore
	prompts driven.PromptStore
	cfg     domain.PipelineConfig
}

// NewStyleRewriter creates a rewriter. store and promptStore may be nil;
// without a store no background knowledge is retrieved.
func NewStyleRewriter(
	gen driven.Generator,
	store driven.KnowledgeStore,
	promptStore driven.PromptStore,
	cfg domain.PipelineConfig,
) *StyleRewriter {
	return &StyleRewriter{
		gen:     gen,
		store:   store,
		prompts: promptStore,
		cfg:     cfg.WithDefaults(),
	}
}

// rewriteContext holds the prompt sections shared by every request of one
// rewrite pass.
type rewriteContext struct {
	template  string
	glossary  string
	retrieval string
	custom    string
	options   string
	feedback  string
}

// Rewrite overwrites state.RewrittenContent and increments
// state.IterationCount. Any generation failure is returned.
func (r *StyleRewriter) Rewrite(ctx context.Context, state *domain.PipelineState) error {
	if state.CleanedContent == "" {
		return fmt.Errorf("%w: nothing to rewrite", domain.ErrInvalidArgument)
	}

	rc := rewriteContext{
		template: prompts.Resolve(r.prompts, driven.StylePromptName(state.Style)),
		glossary: glossarySection(state.GlossaryTerms),
		// Retrieval runs once per pass, not once per chunk.
		retrieval: r.retrieve(ctx, state.CleanedContent),
		custom:    customSection(state.CustomPrompt),
		options:   optionsSection(state.OutputOptions),
	}
	if state.IterationCount > 0 {
		rc.feedback = feedbackSection(state.CritiqueFeedback)
	}

	var (
		out string
		err error
	)
	if chunker.Len(state.CleanedContent) > r.cfg.ChunkThreshold {
		out, err = r.rewriteChunked(ctx, state.CleanedContent, rc)
	} else {
		out, err = r.generate(ctx, r.compose(rc, state.CleanedContent, true, ""))
	}
	if err != nil {
		return err
	}

	state.RewrittenContent = out
	state.IterationCount++
	return nil
}

// rewriteChunked rewrites content chunk by chunk. Chunks are processed
// sequentially: each prompt depends on the previous chunk's output.
func (r *StyleRewriter) rewriteChunked(ctx context.Context, content string, rc rewriteContext) (string, error) {
	chunks, err := chunker.Split(content, r.cfg.ChunkSize)
	if err != nil {
		return "", err
	}
	logger.Debug("rewrite: long content (%d chars), %d chunks", chunker.Len(content), len(chunks))

	parts := make([]string, 0, len(chunks))
	previous := ""
	for i, c := range chunks {
		last := i == len(chunks)-1
		out, err := r.generate(ctx, r.compose(rc, c.PromptText(), last, previous))
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out = strings.TrimSpace(out)
		parts = append(parts, out)
		previous = tail(out, r.cfg.CarryoverChars)
	}
	return strings.Join(parts, ChunkSeparator), nil
}

// compose builds one rewrite request.
func (r *StyleRewriter) compose(rc rewriteContext, content string, withOptions bool, previous string) string {
	var b promptBuilder
	b.add(fillTemplate(rc.template, content))
	b.add(rc.glossary)
	b.add(rc.retrieval)
	b.add(rc.custom)
	if withOptions {
		b.add(rc.options)
	}
	b.add(rc.feedback)
	b.add(carryoverSection(previous))
	return b.String()
}

func (r *StyleRewriter) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := callContext(ctx, r.cfg.CallTimeout)
	defer cancel()
	return r.gen.GenerateText(callCtx, prompt,
		prompts.Resolve(r.prompts, driven.PromptWriterSystem),
		domain.TaskRewrite)
}

// retrieve queries the knowledge store with a prefix of content. It returns
// an empty section when the store is missing, slow or has nothing.
func (r *StyleRewriter) retrieve(ctx context.Context, content string) string {
	if r.store == nil {
		return ""
	}
	query := strings.TrimSpace(truncate(content, r.cfg.RetrievalQueryChars))
	if query == "" {
		return ""
	}

	callCtx, cancel := callContext(ctx, r.cfg.CallTimeout)
	defer cancel()
	results := r.store.Query(callCtx, query, r.cfg.RetrievalTopK)
	if len(results) > 0 {
		logger.Debug("rewrite: %d background items retrieved", len(results))
	}
	return retrievalSection(results, r.cfg.RetrievalResultChars)
}
