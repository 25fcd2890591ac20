package library

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"gopkg.in/fsnotify.v1"
)

// ReloadFunc receives a freshly loaded library.
type ReloadFunc func(path string, lib *Library)

type watchTarget struct {
	options  []LoadOption
	onReload ReloadFunc
}

// Watcher reloads index files when they change on disk. A file that fails
// to load is logged and the previously loaded library stays in use.
type Watcher struct {
	mu       sync.Mutex
	targets  map[string]watchTarget
	dirs     map[string]bool
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	doneChan chan struct{}
	logger   *slog.Logger
}

// NewWatcher creates a watcher. A nil logger uses slog.Default().
func NewWatcher(logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		targets: make(map[string]watchTarget),
		dirs:    make(map[string]bool),
		logger:  logger,
	}
}

// Add registers an index file. Its directory is watched so that editors
// replacing the file by rename are noticed too.
func (w *Watcher) Add(path string, onReload ReloadFunc, opts ...LoadOption) error {
	if onReload == nil {
		return fmt.Errorf("reload callback cannot be nil")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.targets[absPath] = watchTarget{options: opts, onReload: onReload}
	dir := filepath.Dir(absPath)
	if w.dirs[dir] {
		return nil
	}
	w.dirs[dir] = true

	if w.watcher != nil {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	return nil
}

// Start begins watching all registered directories.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		return fmt.Errorf("watcher is already running")
	}
	if len(w.targets) == 0 {
		return fmt.Errorf("no library files registered for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	for dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}

	w.watcher = watcher
	w.stopChan = make(chan struct{})
	w.doneChan = make(chan struct{})
	go w.watchLoop(watcher, w.stopChan, w.doneChan)

	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	watcher := w.watcher
	stopChan := w.stopChan
	doneChan := w.doneChan
	w.watcher = nil
	w.mu.Unlock()

	if watcher == nil {
		return
	}
	close(stopChan)
	watcher.Close()
	<-doneChan
}

func (w *Watcher) watchLoop(watcher *fsnotify.Watcher, stopChan, doneChan chan struct{}) {
	defer close(doneChan)

	for {
		select {
		case <-stopChan:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("library watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	target, ok := w.targets[path]
	w.mu.Unlock()
	if !ok {
		return
	}

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create, event.Op&fsnotify.Write == fsnotify.Write:
		lib, err := Load(path, target.options...)
		if err != nil {
			w.logger.Error("library reload failed, keeping previous index", "path", path, "error", err)
			return
		}
		w.logger.Info("library reloaded", "path", path, "laws", lib.Len())
		target.onReload(path, lib)

	case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
		w.logger.Warn("library file removed, keeping previous index", "path", path)
	}
}
