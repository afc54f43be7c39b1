package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/animerec/animerec-server/internal/api"
	"github.com/animerec/animerec-server/internal/config"
	"github.com/animerec/animerec-server/internal/logger"
	"github.com/animerec/animerec-server/internal/service"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	rec := do.MustInvoke[*service.Recommender](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)

	handler := api.NewServer(rec, storeHandle.Store, api.Options{
		Version:     Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimiter: limiterHandle.Limiter,
	}, log.Component("api").Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
