package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a single catalog file for changes.
//
// The parent directory is watched rather than the file, so editors and tools
// that replace the file through a rename are still observed. Writes are
// debounced: an event is emitted only after size and mtime have stayed the
// same for SettleDelay.
type Watcher struct {
	path   string
	names  map[string]struct{}
	opts   Options
	logger *slog.Logger

	fsw *fsnotify.Watcher

	pending map[string]*pendingEvent // path -> settling file
	mu      sync.Mutex

	events   chan Event
	errors   chan error
	done     chan struct{}
	stopOnce sync.Once
}

// pendingEvent tracks a file that may still be changing
type pendingEvent struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates a watcher for path. Watching begins when Start is called.
func New(path string, logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	path, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:    path,
		names:   opts.names(path),
		opts:    opts,
		logger:  logger,
		fsw:     fsw,
		pending: make(map[string]*pendingEvent),
		events:  make(chan Event, 16),
		errors:  make(chan error, 8),
		done:    make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start processes file system notifications until ctx is cancelled or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching catalog file", "path", w.path, "settle_delay", w.opts.SettleDelay)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("dropping watcher error", "error", err)
			}
		}
	}
}

// handle filters an fsnotify event down to the watched names.
func (w *Watcher) handle(event fsnotify.Event) {
	if _, ok := w.names[filepath.Base(event.Name)]; !ok {
		return
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.cancelPending(event.Name)
		w.emit(Event{Type: EventRemoved, Path: event.Name})
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		w.startSettling(event.Name)
	}
}

// startSettling (re)arms the settle timer for path.
func (w *Watcher) startSettling(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		return
	}

	p := &pendingEvent{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) })
	w.pending[path] = p
}

// checkSettled emits an event if path has not changed since the timer was armed.
func (w *Watcher) checkSettled(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, exists := w.pending[path]
	if !exists {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.emit(Event{Type: EventRemoved, Path: path})
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) })
		return
	}

	delete(w.pending, path)
	w.emit(Event{
		Type:    EventModified,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	case <-w.done:
	}
}

// Events returns the channel of settled changes. It is never closed; select
// on Done alongside it.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel for receiving errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Done is closed once Stop has been called.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Stop releases the underlying watch. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		for _, p := range w.pending {
			p.timer.Stop()
		}
		clear(w.pending)
		w.mu.Unlock()

		err = w.fsw.Close()
	})
	return err
}
