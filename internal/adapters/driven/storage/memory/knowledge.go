package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure KnowledgeRepository implements the interface.
var _ driven.KnowledgeRepository = (*KnowledgeRepository)(nil)

// KnowledgeRepository keeps knowledge records in memory, in insertion order.
type KnowledgeRepository struct {
	mu      sync.RWMutex
	order   []string
	records map[string]driven.KnowledgeRecord
}

// NewKnowledgeRepository creates an empty repository.
func NewKnowledgeRepository() *KnowledgeRepository {
	return &KnowledgeRepository{
		records: make(map[string]driven.KnowledgeRecord),
	}
}

// Upsert stores records, replacing any with the same id in place.
func (r *KnowledgeRepository) Upsert(_ context.Context, records []driven.KnowledgeRecord) error {
	for _, rec := range records {
		if rec.Item.ID == "" {
			return fmt.Errorf("%w: knowledge item without id", domain.ErrInvalidArgument)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		if _, ok := r.records[rec.Item.ID]; !ok {
			r.order = append(r.order, rec.Item.ID)
		}
		r.records[rec.Item.ID] = copyRecord(rec)
	}
	return nil
}

// Scan calls fn for every record until fn returns false.
func (r *KnowledgeRepository) Scan(ctx context.Context, fn func(driven.KnowledgeRecord) bool) error {
	r.mu.RLock()
	snapshot := make([]driven.KnowledgeRecord, 0, len(r.order))
	for _, id := range r.order {
		snapshot = append(snapshot, r.records[id])
	}
	r.mu.RUnlock()

	for _, rec := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(copyRecord(rec)) {
			break
		}
	}
	return nil
}

// Count returns the number of records.
func (r *KnowledgeRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

// Close is a no-op.
func (r *KnowledgeRepository) Close() error {
	return nil
}

func copyRecord(rec driven.KnowledgeRecord) driven.KnowledgeRecord {
	out := rec
	if rec.Item.Metadata != nil {
		out.Item.Metadata = make(map[string]string, len(rec.Item.Metadata))
		for k, v := range rec.Item.Metadata {
			out.Item.Metadata[k] = v
		}
	}
	if rec.Vector != nil {
		out.Vector = append([]float32(nil), rec.Vector...)
	}
	return out
}
