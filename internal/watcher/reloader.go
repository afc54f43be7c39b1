package watcher

import (
	"context"
	"log/slog"
)

// ReloadFunc rebuilds whatever depends on the watched file.
type ReloadFunc func(ctx context.Context) error

// Reloader turns settled file changes into reload calls.
type Reloader struct {
	watcher *Watcher
	reload  ReloadFunc
	logger  *slog.Logger
}

// NewReloader wires w to reload.
func NewReloader(w *Watcher, reload ReloadFunc, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reloader{watcher: w, reload: reload, logger: logger}
}

// Run starts the watcher and calls reload for every settled modification
// until ctx is cancelled or the watcher is stopped. A failed reload is logged
// and the previous state stays in place. Removal is logged only.
func (r *Reloader) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go r.watcher.Start(ctx) //nolint:errcheck // Start only returns nil

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.watcher.Done():
			return nil
		case err := <-r.watcher.Errors():
			r.logger.Warn("catalog watcher error", "error", err)
		case event := <-r.watcher.Events():
			r.handle(ctx, event)
		}
	}
}

func (r *Reloader) handle(ctx context.Context, event Event) {
	switch event.Type {
	case EventRemoved:
		r.logger.Warn("catalog file removed; keeping current snapshot", "path", event.Path)
	case EventModified:
		r.logger.Info("catalog file changed; rebuilding", "path", event.Path, "size", event.Size)
		if err := r.reload(ctx); err != nil {
			r.logger.Error("catalog rebuild failed; keeping current snapshot", "path", event.Path, "error", err)
		}
	}
}
