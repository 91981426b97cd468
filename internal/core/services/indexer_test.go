package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/postprocessors/chunker"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestIndexer(t *testing.T) (*KnowledgeIndexer, *mockSearcher, *mockLedger, string) {
	t.Helper()
	dir := t.TempDir()
	store := &mockSearcher{}
	ledger := newMockLedger()
	k := NewKnowledgeIndexer(store, &mockIngestor{readFiles: true}, ledger, dir)
	return k, store, ledger, dir
}

func TestKnowledgeIndexer_IndexFolder(t *testing.T) {
	k, store, ledger, dir := newTestIndexer(t)
	writeFile(t, filepath.Join(dir, "a.md"), "# Notes\nalpha beta")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "gamma delta")
	writeFile(t, filepath.Join(dir, "image.png"), "binary")
	writeFile(t, filepath.Join(dir, ".hidden.md"), "secret")
	writeFile(t, filepath.Join(dir, ".cache", "c.md"), "cached")

	stats, err := k.IndexFolder(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, domain.IndexStats{Indexed: 2}, stats)
	require.Len(t, store.added, 2)
	assert.Len(t, ledger.hashes, 2)
	assert.Equal(t, 1, ledger.saves)

	var sources []string
	for _, item := range store.added {
		sources = append(sources, item.Metadata[domain.MetaSource])
		assert.True(t, strings.HasSuffix(item.ID, "_chunk_0"))
		assert.Equal(t, domain.KnowledgeTypeRAGDocument, item.Metadata[domain.MetaType])
		assert.Equal(t, "0", item.Metadata[domain.MetaChunkIndex])
		assert.Equal(t, "1", item.Metadata[domain.MetaTotalChunks])
	}
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "sub", "b.txt")}, sources)
}

func TestKnowledgeIndexer_SkipsIndexedFiles(t *testing.T) {
	k, store, _, dir := newTestIndexer(t)
	writeFile(t, filepath.Join(dir, "a.md"), "alpha")

	_, err := k.IndexFolder(context.Background(), false)
	require.NoError(t, err)

	stats, err := k.IndexFolder(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStats{Skipped: 1}, stats)
	assert.Len(t, store.added, 1)

	stats, err = k.IndexFolder(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStats{Indexed: 1}, stats, "force reindexes")
	assert.Len(t, store.added, 2)
	assert.Equal(t, store.added[0].ID, store.added[1].ID, "reindexing replaces by id")
}

func TestKnowledgeIndexer_CountsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.md"), "fine")
	writeFile(t, filepath.Join(dir, "bad.pdf"), "%PDF broken")
	writeFile(t, filepath.Join(dir, "empty.txt"), "   ")

	reader := &mockIngestor{
		readFiles: true,
		fail:      map[string]error{filepath.Join(dir, "bad.pdf"): domain.ErrParse},
	}
	ledger := newMockLedger()
	k := NewKnowledgeIndexer(&mockSearcher{}, reader, ledger, dir)

	stats, err := k.IndexFolder(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStats{Indexed: 1, Failed: 2}, stats)
	assert.Len(t, ledger.hashes, 1, "failed files are retried next pass")
}

func TestKnowledgeIndexer_MissingFolderIsCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rag")
	k := NewKnowledgeIndexer(&mockSearcher{}, &mockIngestor{}, nil, dir)

	stats, err := k.IndexFolder(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, stats)
	assert.DirExists(t, dir)
}

func TestKnowledgeIndexer_LedgerSaveError(t *testing.T) {
	k, _, ledger, dir := newTestIndexer(t)
	ledger.saveErr = errors.New("read-only")
	writeFile(t, filepath.Join(dir, "a.md"), "alpha")

	_, err := k.IndexFolder(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrResourceWrite)
}

func TestKnowledgeIndexer_Windows(t *testing.T) {
	k, store, _, dir := newTestIndexer(t)
	k.SetWindows(chunker.NewWindows(chunker.WithSize(4), chunker.WithOverlap(1)))
	writeFile(t, filepath.Join(dir, "long.txt"), "one two three four five six seven")

	_, err := k.IndexFolder(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, store.added, 2)
	assert.Equal(t, "one two three four", store.added[0].Text)
	assert.Equal(t, "four five six seven", store.added[1].Text)
	assert.Equal(t, "2", store.added[1].Metadata[domain.MetaTotalChunks])
	assert.True(t, strings.HasSuffix(store.added[1].ID, "_chunk_1"))
}

func TestKnowledgeIndexer_Query(t *testing.T) {
	store := &mockSearcher{hits: []domain.KnowledgeHit{{Item: domain.KnowledgeItem{ID: "x"}, Score: 0.5}}}
	k := NewKnowledgeIndexer(store, nil, nil, t.TempDir())

	hits, err := k.Query(context.Background(), "heap", 0, domain.KnowledgeTypeGlossary)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, map[string]string{domain.MetaType: domain.KnowledgeTypeGlossary}, store.lastFilter)

	_, err = k.Query(context.Background(), "heap", 5, "")
	require.NoError(t, err)
	assert.Nil(t, store.lastFilter)

	_, err = k.Query(context.Background(), "  ", 5, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFileHash(t *testing.T) {
	h := FileHash("/rag/a.md", 1)
	assert.Len(t, h, 32)
	assert.Equal(t, h, FileHash("/rag/a.md", 1))
	assert.NotEqual(t, h, FileHash("/rag/a.md", 2))
	assert.NotEqual(t, h, FileHash("/rag/b.md", 1))
}
