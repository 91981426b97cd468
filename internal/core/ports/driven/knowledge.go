package driven

import (
	"context"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// KnowledgeStore is the append-mostly similarity index shared by runs.
type KnowledgeStore interface {
	// Add inserts items. Items with an existing ID replace the old entry.
	Add(ctx context.Context, items []domain.KnowledgeItem) error

	// Query returns the text of the k nearest items, best first.
	// It returns an empty slice on no match or when the store is unavailable.
	Query(ctx context.Context, text string, k int) []string
}

// KnowledgeSearcher extends KnowledgeStore with scored, filterable results.
type KnowledgeSearcher interface {
	KnowledgeStore

	// Search returns up to k hits whose metadata matches every filter entry.
	Search(ctx context.Context, text string, k int, filter map[string]string) ([]domain.KnowledgeHit, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)
}

// KnowledgeRecord is a stored item with its optional embedding.
type KnowledgeRecord struct {
	Item   domain.KnowledgeItem
	Vector []float32
}

// KnowledgeRepository persists knowledge records.
// Implementations must be safe for concurrent use.
type KnowledgeRepository interface {
	// Upsert stores records, replacing any with the same item ID.
	Upsert(ctx context.Context, records []KnowledgeRecord) error

	// Scan calls fn for every record until fn returns false.
	Scan(ctx context.Context, fn func(KnowledgeRecord) bool) error

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// IndexLedger remembers which files have been indexed.
type IndexLedger interface {
	// Has reports whether hash was recorded.
	Has(hash string) bool

	// Record adds hash to the ledger.
	Record(hash string)

	// Save persists the ledger.
	Save() error
}
