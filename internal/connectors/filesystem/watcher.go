package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/tutorforge/internal/logger"
)

// ChangeType classifies a filesystem change.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is one file event under a watched root.
type Change struct {
	Type ChangeType
	Path string
}

// Watcher reports file changes below a root directory. Hidden files and
// directories are ignored; new directories are watched as they appear.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for root.
func NewWatcher(root string) *Watcher {
	return &Watcher{root: root}
}

// Watch starts watching and returns a channel of changes. The channel is
// closed when ctx is cancelled or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w.watcher = fw

	if err := w.addTree(w.root); err != nil {
		fw.Close()
		return nil, err
	}

	changes := make(chan Change)
	go w.loop(ctx, changes)
	return changes, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context, changes chan<- Change) {
	defer close(changes)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", w.root, err)
		}
	}
}

// handleFsEvent maps an fsnotify event to a Change, or nil when the event
// is irrelevant.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	if IsHidden(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("watch %s: %v", event.Name, err)
			}
			return nil
		}
		return &Change{Type: ChangeCreated, Path: event.Name}
	case event.Has(fsnotify.Write):
		return &Change{Type: ChangeUpdated, Path: event.Name}
	default:
		return nil
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && IsHidden(path) {
			return filepath.SkipDir
		}
		if w.watcher == nil {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
