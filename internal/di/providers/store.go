package providers

import (
	"github.com/samber/do/v2"

	"github.com/animerec/animerec-server/internal/config"
	"github.com/animerec/animerec-server/internal/logger"
	"github.com/animerec/animerec-server/internal/store"
)

// StoreHandle wraps the session store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the session store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := store.New(store.Options{
		Path:       cfg.Sessions.Path,
		SessionTTL: cfg.Sessions.TTL,
	}, log.Component("store").Logger)
	if err != nil {
		return nil, err
	}

	if cfg.Sessions.Path == "" {
		log.Info("Session store initialized in memory", "ttl", cfg.Sessions.TTL)
	} else {
		log.Info("Session store initialized", "path", cfg.Sessions.Path, "ttl", cfg.Sessions.TTL)
	}

	return &StoreHandle{Store: st}, nil
}
