package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shopchat/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a single file (typically .shopchat/preferences.json) and
// invokes onChange once the file has been quiet for the debounce window.
// The parent directory is watched so editors that replace the file atomically
// are still picked up.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	onChange    func(path string)
	pending     time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for debugging.
type WatcherStats struct {
	Events        int
	Notifications int
	Errors        int
	LastEventTime time.Time
	LastEventType string
}

// NewWatcher creates a watcher for path. onChange runs on the watcher goroutine.
func NewWatcher(path string, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     fw,
		path:        filepath.Clean(path),
		dir:         filepath.Dir(path),
		onChange:    onChange,
		debounceDur: 200 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// SetDebounce overrides the quiet period. Must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounceDur = d
	w.mu.Unlock()
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		logging.ConfigWarn("Watcher: failed to create %s: %v (continuing anyway)", w.dir, err)
	}

	if err := w.watcher.Add(w.dir); err != nil {
		logging.ConfigWarn("Watcher: initial watch failed: %v", err)
	} else {
		logging.Config("Watcher: watching %s", w.path)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
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
		logging.Get(logging.CategoryConfig).Error("Watcher: error closing: %v", err)
	}
	logging.Config("Watcher: stopped")
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
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
			logging.Get(logging.CategoryConfig).Error("Watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}

	logging.ConfigDebug("Watcher: %s event for %s", eventType, event.Name)

	w.mu.Lock()
	now := time.Now()
	w.stats.Events++
	w.stats.LastEventTime = now
	w.stats.LastEventType = eventType
	w.pending = now
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.stats.Notifications++
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(w.path)
	}
}
