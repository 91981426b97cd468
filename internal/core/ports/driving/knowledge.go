package driving

import (
	"context"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// KnowledgeService manages the knowledge base.
type KnowledgeService interface {
	// IndexFolder indexes the configured RAG folder.
	// With force, files already in the ledger are indexed again.
	IndexFolder(ctx context.Context, force bool) (domain.IndexStats, error)

	// Query returns the best matching knowledge items.
	Query(ctx context.Context, text string, k int, itemType string) ([]domain.KnowledgeHit, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)

	// Folder returns the RAG folder being indexed.
	Folder() string
}
