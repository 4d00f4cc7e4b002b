package content

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AtRiskMedia/folio-go/internal/infrastructure/observability/logging"
)

// Watcher reloads a Catalog when work files change. Bursts of events inside
// the debounce window trigger a single reload.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	catalog  *Catalog
	logger   *logging.ChanneledLogger
	debounce time.Duration
	pending  time.Time
	onReload func()
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher for catalog's directory. onReload, if set, runs
// after each successful reload.
func NewWatcher(catalog *Catalog, debounce time.Duration, logger *logging.ChanneledLogger, onReload func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Watcher{
		watcher:  w,
		catalog:  catalog,
		logger:   logger,
		debounce: debounce,
		onReload: onReload,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start adds the content tree to the watch list and runs the event loop in a
// goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	err := filepath.WalkDir(w.catalog.Dir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if path != w.catalog.Dir() && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		w.logger.Content().Warn("Content watch incomplete", "dir", w.catalog.Dir(), "error", err.Error())
	} else {
		w.logger.Content().Info("Watching content directory", "dir", w.catalog.Dir())
	}

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Content().Error("Error closing content watcher", "error", err.Error())
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Content().Error("Content watcher error", "error", err.Error())
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) tick() time.Duration {
	if t := w.debounce / 5; t > 10*time.Millisecond {
		return t
	}
	return 10 * time.Millisecond
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		// New subdirectories need their own watch.
		if isDir(event.Name) {
			_ = w.watcher.Add(event.Name)
		}
	}
	if !strings.EqualFold(filepath.Ext(event.Name), workExt) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Content().Debug("Work file changed", "path", event.Name, "op", event.Op.String())
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	if err := w.catalog.Reload(); err != nil {
		w.logger.Content().Error("Catalog reload failed", "error", err.Error())
		return
	}
	if w.onReload != nil {
		w.onReload()
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
