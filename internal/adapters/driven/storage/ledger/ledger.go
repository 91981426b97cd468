// Package ledger records which knowledge files have been indexed, as a
// newline-separated list of hashes in a plain file.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.IndexLedger = (*Ledger)(nil)

// Ledger is a file-backed set of hashes.
type Ledger struct {
	mu     sync.Mutex
	path   string
	hashes map[string]struct{}
}

// Open loads the ledger at path. A missing file is an empty ledger.
func Open(path string) (*Ledger, error) {
	l := &Ledger{path: path, hashes: make(map[string]struct{})}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if h := strings.TrimSpace(sc.Text()); h != "" {
			l.hashes[h] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return l, nil
}

// Has reports whether hash was recorded.
func (l *Ledger) Has(hash string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.hashes[hash]
	return ok
}

// Record adds hash.
func (l *Ledger) Record(hash string) {
	l.mu.Lock()
	l.hashes[hash] = struct{}{}
	l.mu.Unlock()
}

// Len returns the number of recorded hashes.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hashes)
}

// Save writes the ledger atomically, one sorted hash per line.
func (l *Ledger) Save() error {
	l.mu.Lock()
	lines := make([]string, 0, len(l.hashes))
	for h := range l.hashes {
		lines = append(lines, h)
	}
	l.mu.Unlock()
	sort.Strings(lines)

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	data := strings.Join(lines, "\n")
	if len(lines) > 0 {
		data += "\n"
	}
	if err := os.WriteFile(tmp, []byte(data), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}
