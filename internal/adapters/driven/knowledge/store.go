// Package knowledge implements the knowledge store used for glossary
// persistence and retrieval augmentation.
//
// Items live in a driven.KnowledgeRepository (SQLite or memory). When an
// embedding service is configured, items are embedded on insert and ranked
// by cosine similarity; otherwise, or for items stored without a vector,
// ranking falls back to word overlap.
package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.KnowledgeSearcher = (*Store)(nil)

// Store ranks knowledge items from a repository.
type Store struct {
	repo     driven.KnowledgeRepository
	embedder driven.EmbeddingService
}

// NewStore creates a store. embedder may be nil.
func NewStore(repo driven.KnowledgeRepository, embedder driven.EmbeddingService) *Store {
	return &Store{repo: repo, embedder: embedder}
}

// Add inserts items. If embedding fails the items are stored without
// vectors and remain reachable by lexical search.
func (s *Store) Add(ctx context.Context, items []domain.KnowledgeItem) error {
	if len(items) == 0 {
		return nil
	}

	records := make([]driven.KnowledgeRecord, len(items))
	for i, item := range items {
		records[i] = driven.KnowledgeRecord{Item: item}
	}

	if s.embedder != nil {
		texts := make([]string, len(items))
		for i, item := range items {
			texts[i] = item.Text
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		switch {
		case err != nil:
			logger.Warn("knowledge: embedding %d items failed, storing without vectors: %v", len(items), err)
		case len(vectors) != len(items):
			logger.Warn("knowledge: embedder returned %d vectors for %d items", len(vectors), len(items))
		default:
			for i := range records {
				records[i].Vector = vectors[i]
			}
		}
	}

	if err := s.repo.Upsert(ctx, records); err != nil {
		return fmt.Errorf("add knowledge: %w", err)
	}
	return nil
}

// Query returns the text of the k best items. Failures yield an empty slice.
func (s *Store) Query(ctx context.Context, text string, k int) []string {
	hits, err := s.Search(ctx, text, k, nil)
	if err != nil {
		logger.Warn("knowledge: query failed: %v", err)
		return []string{}
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Item.Text
	}
	return out
}

// Search returns up to k hits, best first, whose metadata matches filter.
func (s *Store) Search(ctx context.Context, text string, k int, filter map[string]string) ([]domain.KnowledgeHit, error) {
	if k <= 0 || strings.TrimSpace(text) == "" {
		return []domain.KnowledgeHit{}, nil
	}

	var queryVec []float32
	if s.embedder != nil {
		v, err := s.embedder.Embed(ctx, text)
		if err != nil {
			logger.Debug("knowledge: query embedding failed, ranking lexically: %v", err)
		} else {
			queryVec = v
		}
	}
	queryTerms := terms(text)

	var hits []domain.KnowledgeHit
	err := s.repo.Scan(ctx, func(rec driven.KnowledgeRecord) bool {
		if !matches(rec.Item.Metadata, filter) {
			return true
		}
		var score float64
		if queryVec != nil && len(rec.Vector) == len(queryVec) {
			score = cosine(queryVec, rec.Vector)
		} else {
			score = overlap(queryTerms, terms(rec.Item.Text))
		}
		if score > 0 {
			hits = append(hits, domain.KnowledgeHit{Item: rec.Item, Score: score})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	if hits == nil {
		hits = []domain.KnowledgeHit{}
	}
	return hits, nil
}

// Count returns the number of stored items.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func matches(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// cosine returns the cosine similarity of a and b, which have equal length.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// terms returns the distinct lower-cased words of s, ignoring one-letter words.
func terms(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len([]rune(w)) > 1 {
			out[w] = struct{}{}
		}
	}
	return out
}

// overlap is the share of query terms found in doc.
func overlap(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	found := 0
	for w := range query {
		if _, ok := doc[w]; ok {
			found++
		}
	}
	return float64(found) / float64(len(query))
}
