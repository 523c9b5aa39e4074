// Package watch indexes documents dropped into a local folder.
//
// The watcher follows one directory (not recursive) and uploads every
// regular, non-hidden file that is created or rewritten there. Bursts of
// writes to the same file are coalesced so a file is uploaded once it has
// been quiet for the debounce interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
	"github.com/s-nishad/DueDiligence/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is uploaded.
const DefaultDebounce = 500 * time.Millisecond

// minTick is the shortest interval at which pending files are checked.
const minTick = time.Millisecond

// Indexed reports the outcome of one upload.
type Indexed struct {
	Path   string
	Handle domain.RequestHandle
	Err    error
}

// Watcher uploads new files in a directory to a project.
type Watcher struct {
	dir       string
	projectID string
	docs      driving.DocumentService
	debounce  time.Duration
	log       *slog.Logger

	mu  sync.Mutex
	fsw *fsnotify.Watcher
}

// New creates a watcher for dir that indexes into projectID.
func New(docs driving.DocumentService, projectID, dir string) *Watcher {
	return &Watcher{
		dir:       dir,
		projectID: projectID,
		docs:      docs,
		debounce:  DefaultDebounce,
		log:       logger.For("watch").With("project_id", projectID, "dir", dir),
	}
}

// SetDebounce changes the quiet period. Non-positive values are ignored.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Watch starts watching. The returned channel receives one Indexed per
// upload and is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Indexed, error) {
	if w.projectID == "" {
		return nil, domain.Invalid("watch: project id is required")
	}
	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return nil, domain.Invalid("watch: %s is not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	out := make(chan Indexed)
	go w.loop(ctx, fsw, out)
	w.log.Debug("watching")
	return out, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	w.fsw = nil
	return err
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Indexed) {
	defer close(out)
	defer w.Close()

	pending := make(map[string]time.Time)
	tick := time.NewTicker(tickInterval(w.debounce))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if path, ok := w.handleFsEvent(event); ok {
				pending[path] = time.Now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)

		case now := <-tick.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				res := w.index(ctx, path)
				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent returns the path to upload for an event, if any.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) index(ctx context.Context, path string) Indexed {
	res := Indexed{Path: path}
	f, err := os.Open(path)
	if err != nil {
		// Removed before it settled.
		if errors.Is(err, os.ErrNotExist) {
			res.Err = fmt.Errorf("index %s: %w", filepath.Base(path), domain.ErrNotFound)
			return res
		}
		res.Err = fmt.Errorf("index %s: %w", filepath.Base(path), err)
		return res
	}
	defer f.Close()

	handle, err := w.docs.Index(ctx, w.projectID, domain.Upload{
		Filename: filepath.Base(path),
		Content:  f,
	})
	if err != nil {
		w.log.Warn("index failed", "file", path, "error", err)
		res.Err = fmt.Errorf("index %s: %w", filepath.Base(path), err)
		return res
	}
	w.log.Debug("indexed", "file", path, "request_id", handle.ID)
	res.Handle = handle
	return res
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}

// tickInterval is how often pending files are checked for a debounce.
func tickInterval(debounce time.Duration) time.Duration {
	return max(debounce/2, minTick)
}
