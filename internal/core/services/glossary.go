package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
	"github.com/custodia-labs/tutorforge/internal/prompts"
)

// glossaryResponse is the shape requested from the generator.
type glossaryResponse struct {
	Terms []domain.GlossaryTerm `json:"terms"`
}

// GlossaryExtractor derives key terms from cleaned content and stores
// them in the knowledge store.
//
// Extraction is best-effort: every failure yields an empty glossary.
type GlossaryExtractor struct {
	gen     driven.Generator
	store   driven.KnowledgeStore
	prompts driven.PromptStore
	cfg     domain.PipelineConfig
}

// NewGlossaryExtractor creates an extractor. store and promptStore may be nil.
func NewGlossaryExtractor(
	gen driven.Generator,
	store driven.KnowledgeStore,
	promptStore driven.PromptStore,
	cfg domain.PipelineConfig,
) *GlossaryExtractor {
	return &GlossaryExtractor{
		gen:     gen,
		store:   store,
		prompts: promptStore,
		cfg:     cfg.WithDefaults(),
	}
}

// Extract returns the glossary for state. It never fails; the result is
// an empty, non-nil slice when anything goes wrong.
func (g *GlossaryExtractor) Extract(ctx context.Context, state *domain.PipelineState) []domain.GlossaryTerm {
	empty := []domain.GlossaryTerm{}

	input := truncate(state.CleanedContent, g.cfg.GlossaryInputChars)
	if strings.TrimSpace(input) == "" {
		return empty
	}

	callCtx, cancel := callContext(ctx, g.cfg.CallTimeout)
	res := generateStructured[glossaryResponse](callCtx, g.gen,
		"Extract terms from:\n"+input,
		prompts.Resolve(g.prompts, driven.PromptGlossary),
		domain.TaskGlossary)
	cancel()

	if !res.OK() {
		if se, ok := res.SchemaError(); ok {
			logger.Warn("glossary: malformed response (%s), continuing without glossary", se.Shape)
		} else {
			logger.Warn("glossary: extraction failed, continuing without glossary: %v", res.Err)
		}
		return empty
	}

	terms := dedupeTerms(res.Value.Terms)
	if len(terms) == 0 {
		return empty
	}

	if err := g.persist(ctx, state.RunID, terms); err != nil {
		logger.Warn("glossary: %v, continuing without glossary", err)
		return empty
	}

	logger.Debug("glossary: %d terms", len(terms))
	return terms
}

// persist writes terms to the knowledge store with run-scoped ids.
func (g *GlossaryExtractor) persist(ctx context.Context, runID string, terms []domain.GlossaryTerm) error {
	if g.store == nil {
		return nil
	}

	items := make([]domain.KnowledgeItem, len(terms))
	for i, t := range terms {
		pos := strconv.Itoa(i)
		items[i] = domain.KnowledgeItem{
			ID:   GlossaryItemID(runID, i),
			Text: t.Term,
			Metadata: map[string]string{
				domain.MetaType:       domain.KnowledgeTypeGlossary,
				domain.MetaDefinition: t.Definition,
				domain.MetaRunID:      runID,
				domain.MetaPosition:   pos,
			},
		}
	}

	callCtx, cancel := callContext(ctx, g.cfg.CallTimeout)
	defer cancel()
	if err := g.store.Add(callCtx, items); err != nil {
		return fmt.Errorf("store terms: %w", err)
	}
	return nil
}

// GlossaryItemID returns the knowledge item id of the term at position.
func GlossaryItemID(runID string, position int) string {
	return fmt.Sprintf("glossary_%s_%d", runID, position)
}

// dedupeTerms trims terms, drops blank ones and keeps the first occurrence
// of each term compared case-insensitively.
func dedupeTerms(terms []domain.GlossaryTerm) []domain.GlossaryTerm {
	seen := make(map[string]bool, len(terms))
	out := make([]domain.GlossaryTerm, 0, len(terms))
	for _, t := range terms {
		t.Term = strings.TrimSpace(t.Term)
		t.Definition = strings.TrimSpace(t.Definition)
		if t.Term == "" {
			continue
		}
		key := strings.ToLower(t.Term)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
