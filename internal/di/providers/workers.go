package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/animerec/animerec-server/internal/config"
	"github.com/animerec/animerec-server/internal/logger"
	"github.com/animerec/animerec-server/internal/ratelimit"
	"github.com/animerec/animerec-server/internal/service"
	"github.com/animerec/animerec-server/internal/watcher"
)

// RateLimiterHandle wraps the per-client limiter. Limiter is nil when rate
// limiting is disabled.
type RateLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the API rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.RateLimit.Enabled {
		log.Info("API rate limiting disabled by configuration")
		return &RateLimiterHandle{}, nil
	}

	log.Info("API rate limiting enabled", "rps", cfg.RateLimit.RPS, "burst", cfg.RateLimit.Burst)
	return &RateLimiterHandle{Limiter: ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)}, nil
}

// CatalogWatcherHandle wraps the catalog file watcher with shutdown
// capability. Watcher is nil when watching is disabled.
type CatalogWatcherHandle struct {
	Watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideCatalogWatcher provides the watcher that rebuilds the graph when the
// catalog file changes.
func ProvideCatalogWatcher(i do.Injector) (*CatalogWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	rec := do.MustInvoke[*service.Recommender](i)

	if !cfg.Catalog.Watch {
		log.Info("Catalog watching disabled by configuration")
		return &CatalogWatcherHandle{}, nil
	}

	opts := watcher.Options{SettleDelay: cfg.Catalog.SettleDelay}
	if cfg.Catalog.Format == config.FormatSQLite {
		opts.Companions = []string{"-wal"}
	}

	wlog := log.Component("watcher").Logger
	w, err := watcher.New(cfg.Catalog.Path, wlog, opts)
	if err != nil {
		return nil, err
	}

	reloader := watcher.NewReloader(w, func(ctx context.Context) error {
		_, err := rec.Reload(ctx)
		return err
	}, wlog)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := reloader.Run(ctx); err != nil {
			log.WithError(err).Error("Catalog watcher stopped")
		}
	}()

	log.WithField("path", w.Path()).Info("Catalog watcher started", "settle_delay", opts.SettleDelay)

	return &CatalogWatcherHandle{Watcher: w, cancel: cancel}, nil
}
