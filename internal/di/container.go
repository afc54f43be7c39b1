// Package di provides dependency injection configuration for the recommender server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/config"
	"github.com/animerec/animerec-server/internal/di/providers"
	"github.com/animerec/animerec-server/internal/logger"
	"github.com/animerec/animerec-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Catalog and recommendation engine
	do.Provide(injector, providers.ProvideCatalogSource)
	do.Provide(injector, providers.ProvideRecommender)

	// Session storage
	do.Provide(injector, providers.ProvideStore)

	// Workers
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideCatalogWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services in dependency order. The first provider
// error aborts startup.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[catalog.Source](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.Recommender](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.RateLimiterHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CatalogWatcherHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
