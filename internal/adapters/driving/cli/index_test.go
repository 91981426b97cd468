package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

func TestIndexCmd_Flags(t *testing.T) {
	force := indexCmd.Flags().Lookup("force")
	require.NotNil(t, force)
	assert.Equal(t, "f", force.Shorthand)
	assert.NotNil(t, indexCmd.Flags().Lookup("watch"))
}

func TestIndexCmd_Executes(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.knowledge.stats = domain.IndexStats{Indexed: 3, Skipped: 2, Failed: 1}

	out, _, err := execute(t, "", "index")
	require.NoError(t, err)
	assert.Contains(t, out, "rag: 3 indexed, 2 skipped, 1 failed")
	assert.False(t, ts.knowledge.lastForce)
}

func TestIndexCmd_Force(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	_, _, err := execute(t, "", "index", "--force")
	require.NoError(t, err)
	assert.True(t, ts.knowledge.lastForce)
}

func TestIndexCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.knowledge.err = errors.New("ledger unwritable")

	_, _, err := execute(t, "", "index")
	assert.EqualError(t, err, "indexing failed: ledger unwritable")
}

func TestIndexCmd_RejectsArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute(t, "", "index", "extra")
	assert.Error(t, err)
}

// countingKnowledge counts IndexFolder calls safely across goroutines.
type countingKnowledge struct {
	mockKnowledgeService
	mu    sync.Mutex
	calls int
}

func (c *countingKnowledge) IndexFolder(_ context.Context, _ bool) (domain.IndexStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return domain.IndexStats{Indexed: 1}, nil
}

func (c *countingKnowledge) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestWatchFolder_ReindexesAfterChanges(t *testing.T) {
	oldDebounce := watchDebounce
	watchDebounce = 50 * time.Millisecond
	defer func() { watchDebounce = oldDebounce }()

	dir := t.TempDir()
	knowledge := &countingKnowledge{mockKnowledgeService: mockKnowledgeService{folder: dir}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetOut(&safeBuffer{})

	done := make(chan error, 1)
	go func() { done <- watchFolder(cmd, knowledge) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# Heaps"), 0o644))

	assert.Eventually(t, func() bool { return knowledge.Calls() >= 1 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchFolder did not stop")
	}
}

func TestWatchFolder_MissingFolder(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	err := watchFolder(cmd, &mockKnowledgeService{folder: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

type safeBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}
