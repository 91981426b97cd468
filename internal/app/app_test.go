package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

func testSettings(t *testing.T) domain.AppSettings {
	t.Helper()
	dir := t.TempDir()
	settings := domain.DefaultAppSettings()
	settings.Image.Provider = domain.ImageProviderNone
	settings.Paths = domain.PathSettings{
		DataDir:   dir,
		RAGFolder: filepath.Join(dir, "rag"),
		OutputDir: filepath.Join(dir, "output"),
	}
	return settings
}

func TestNew_SQLite(t *testing.T) {
	settings := testSettings(t)

	a, err := New(context.Background(), settings, Options{PromptDir: filepath.Join(settings.Paths.DataDir, "prompts")})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Convert)
	assert.NotNil(t, a.Indexer)
	assert.Equal(t, settings.Paths.OutputDir, a.Artifacts.Dir())
	assert.Equal(t, settings.Paths.RAGFolder, a.Indexer.Folder())
	assert.FileExists(t, filepath.Join(settings.Paths.DataDir, "knowledge.db"))
}

func TestNew_EphemeralKnowledgeIndexesFolder(t *testing.T) {
	settings := testSettings(t)
	require.NoError(t, os.MkdirAll(settings.Paths.RAGFolder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(settings.Paths.RAGFolder, "heap.md"),
		[]byte("# Heaps\nA binary heap keeps the smallest key at the root."), 0o644))

	a, err := New(context.Background(), settings, Options{
		PromptDir:          filepath.Join(settings.Paths.DataDir, "prompts"),
		EphemeralKnowledge: true,
	})
	require.NoError(t, err)
	defer a.Close()

	stats, err := a.Indexer.IndexFolder(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStats{Indexed: 1}, stats)

	hits, err := a.Indexer.Query(context.Background(), "binary heap root", 3, "")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Contains(t, hits[0].Item.Text, "smallest key")

	assert.NoFileExists(t, filepath.Join(settings.Paths.DataDir, "knowledge.db"))
}

func TestNewIngestor_ReadsLocalFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain notes"), 0o644))

	doc, err := NewIngestor("").Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "plain notes", doc.Content)
}
