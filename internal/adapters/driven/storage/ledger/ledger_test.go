package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), ".indexed_hashes"))
	require.NoError(t, err)
	assert.Zero(t, l.Len())
	assert.False(t, l.Has("abc"))
}

func TestLedger_SaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag", ".indexed_hashes")

	l, err := Open(path)
	require.NoError(t, err)
	l.Record("bbb")
	l.Record("aaa")
	l.Record("aaa")
	require.NoError(t, l.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aaa\nbbb\n", string(data))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.True(t, reopened.Has("aaa"))
	assert.True(t, reopened.Has("bbb"))
	assert.Equal(t, 2, reopened.Len())
}

func TestOpen_IgnoresBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".indexed_hashes")
	require.NoError(t, os.WriteFile(path, []byte("one\n\n  two  \n"), 0o644))

	l, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Has("two"))
}
