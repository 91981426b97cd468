// Package artifacts stores generated files (images, Markdown, HTML, PDF)
// in the output directory.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure FileWriter implements the interface.
var _ driven.ArtifactWriter = (*FileWriter)(nil)

// FileWriter writes artifacts into a single flat directory.
type FileWriter struct {
	dir string
}

// NewFileWriter creates a writer targeting dir. The directory is created
// on first write.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: filepath.Clean(dir)}
}

// Dir returns the output directory.
func (w *FileWriter) Dir() string {
	return w.dir
}

// Write stores data as name, replacing any previous file atomically, and
// returns name.
func (w *FileWriter) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResourceWrite, err)
	}
	if err := validName(name); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating output directory: %w", domain.ErrResourceWrite, err)
	}

	tmp, err := os.CreateTemp(w.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResourceWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: writing %s: %w", domain.ErrResourceWrite, name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", domain.ErrResourceWrite, name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResourceWrite, err)
	}
	if err := os.Rename(tmpName, filepath.Join(w.dir, name)); err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", domain.ErrResourceWrite, name, err)
	}
	return name, nil
}

// Path returns the absolute-or-relative path of an artifact name inside
// the output directory, rejecting names that escape it.
func (w *FileWriter) Path(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(w.dir, name), nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: invalid artifact name %q", domain.ErrInvalidArgument, name)
	}
	return nil
}
