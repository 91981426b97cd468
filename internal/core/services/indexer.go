package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driving"
	"github.com/custodia-labs/tutorforge/internal/logger"
	"github.com/custodia-labs/tutorforge/internal/postprocessors/chunker"
)

// Ensure KnowledgeIndexer implements the interface.
var _ driving.KnowledgeService = (*KnowledgeIndexer)(nil)

// LedgerFileName is the name of the indexed-files ledger in the RAG folder.
const LedgerFileName = ".indexed_hashes"

// indexableExts are the file types the indexer reads.
var indexableExts = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

// KnowledgeIndexer feeds a folder of reference documents into the
// knowledge store, in overlapping word windows.
type KnowledgeIndexer struct {
	store   driven.KnowledgeSearcher
	reader  driven.Ingestor
	ledger  driven.IndexLedger
	folder  string
	windows *chunker.Windows
}

// NewKnowledgeIndexer creates an indexer for folder. ledger may be nil, in
// which case every pass indexes every file.
func NewKnowledgeIndexer(
	store driven.KnowledgeSearcher,
	reader driven.Ingestor,
	ledger driven.IndexLedger,
	folder string,
) *KnowledgeIndexer {
	return &KnowledgeIndexer{
		store:   store,
		reader:  reader,
		ledger:  ledger,
		folder:  folder,
		windows: chunker.NewWindows(),
	}
}

// SetWindows replaces the word window splitter.
func (k *KnowledgeIndexer) SetWindows(w *chunker.Windows) {
	if w != nil {
		k.windows = w
	}
}

// Folder returns the RAG folder.
func (k *KnowledgeIndexer) Folder() string {
	return k.folder
}

// IndexFolder indexes new or modified files under the folder. A missing
// folder is created and yields empty stats. Per-file failures are counted,
// not returned.
func (k *KnowledgeIndexer) IndexFolder(ctx context.Context, force bool) (domain.IndexStats, error) {
	var stats domain.IndexStats
	logger.Section("Index " + k.folder)

	if _, err := os.Stat(k.folder); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(k.folder, 0o755); err != nil {
			return stats, fmt.Errorf("%w: create %s: %w", domain.ErrResourceWrite, k.folder, err)
		}
		return stats, nil
	}

	err := filepath.WalkDir(k.folder, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("index: %s: %v", path, walkErr)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != k.folder && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !indexableExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			stats.Failed++
			return nil
		}
		hash := FileHash(path, info.ModTime().UnixNano())
		if !force && k.ledger != nil && k.ledger.Has(hash) {
			stats.Skipped++
			return nil
		}

		if err := k.indexFile(ctx, path, hash); err != nil {
			logger.Warn("index: %s: %v", path, err)
			stats.Failed++
			return nil
		}
		if k.ledger != nil {
			k.ledger.Record(hash)
		}
		stats.Indexed++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("index %s: %w", k.folder, err)
	}

	if k.ledger != nil {
		if err := k.ledger.Save(); err != nil {
			return stats, fmt.Errorf("%w: save ledger: %w", domain.ErrResourceWrite, err)
		}
	}

	logger.Info("indexed %d, skipped %d, failed %d", stats.Indexed, stats.Skipped, stats.Failed)
	return stats, nil
}

// indexFile reads path and stores its windows.
func (k *KnowledgeIndexer) indexFile(ctx context.Context, path, hash string) error {
	doc, err := k.reader.Parse(ctx, path)
	if err != nil {
		return err
	}
	windows := k.windows.Split(doc.Content)
	if len(windows) == 0 {
		return fmt.Errorf("%w: no text", domain.ErrParse)
	}

	items := make([]domain.KnowledgeItem, len(windows))
	total := strconv.Itoa(len(windows))
	for i, w := range windows {
		items[i] = domain.KnowledgeItem{
			ID:   fmt.Sprintf("%s_chunk_%d", hash, i),
			Text: w,
			Metadata: map[string]string{
				domain.MetaSource:      path,
				domain.MetaFilename:    filepath.Base(path),
				domain.MetaChunkIndex:  strconv.Itoa(i),
				domain.MetaTotalChunks: total,
				domain.MetaType:        domain.KnowledgeTypeRAGDocument,
			},
		}
	}

	logger.Debug("index: %s -> %d windows", filepath.Base(path), len(items))
	return k.store.Add(ctx, items)
}

// Query searches the knowledge store. An empty itemType matches every type.
func (k *KnowledgeIndexer) Query(ctx context.Context, text string, limit int, itemType string) ([]domain.KnowledgeHit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = domain.DefaultPipelineConfig().RetrievalTopK
	}

	var filter map[string]string
	if itemType != "" {
		filter = map[string]string{domain.MetaType: itemType}
	}
	return k.store.Search(ctx, text, limit, filter)
}

// Count returns the number of stored knowledge items.
func (k *KnowledgeIndexer) Count(ctx context.Context) (int, error) {
	return k.store.Count(ctx)
}

// FileHash identifies one version of a file by path and modification time.
func FileHash(path string, modTime int64) string {
	sum := sha256.Sum256([]byte(path + ":" + strconv.FormatInt(modTime, 10)))
	return hex.EncodeToString(sum[:16])
}
