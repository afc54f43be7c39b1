package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/catalog/sqlite"
	"github.com/animerec/animerec-server/internal/config"
	"github.com/animerec/animerec-server/internal/graph"
	"github.com/animerec/animerec-server/internal/logger"
	"github.com/animerec/animerec-server/internal/service"
	"github.com/animerec/animerec-server/internal/validation"
)

// NewCatalogSource builds the catalog source described by cfg.
func NewCatalogSource(cfg config.CatalogConfig, log *logger.Logger) (catalog.Source, error) {
	switch cfg.Format {
	case config.FormatCSV:
		return &catalog.CSVFile{
			Path: cfg.Path,
			Clean: catalog.CleanOptions{
				Enabled:        cfg.Clean,
				ExcludedGenres: cfg.ExcludedGenres,
			},
		}, nil
	case config.FormatSQLite:
		return &sqlite.File{Path: cfg.Path, Logger: log.Component("catalog-sqlite").Logger}, nil
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", cfg.Format)
	}
}

// ProvideCatalogSource provides the configured catalog source.
func ProvideCatalogSource(i do.Injector) (catalog.Source, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return NewCatalogSource(cfg.Catalog, log)
}

// NewRecommender builds a recommender over source and publishes the first
// snapshot.
func NewRecommender(ctx context.Context, cfg *config.Config, source catalog.Source, log *logger.Logger) (*service.Recommender, error) {
	opts := service.Options{
		TopN: cfg.Recommend.TopN,
		Build: graph.Options{
			Strict: cfg.Catalog.Strict,
			Logger: log.Component("graph").Logger,
		},
	}
	if cfg.Catalog.Strict {
		opts.Build.Validator = validation.New()
	}

	rec := service.New(source, opts, log.Component("recommender").Logger)
	if _, err := rec.Reload(ctx); err != nil {
		return nil, fmt.Errorf("initial catalog build: %w", err)
	}
	return rec, nil
}

// ProvideRecommender provides the recommender with its first snapshot loaded.
func ProvideRecommender(i do.Injector) (*service.Recommender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	source := do.MustInvoke[catalog.Source](i)

	ctx, cancel := context.WithTimeout(context.Background(), initialLoadTimeout)
	defer cancel()

	rec, err := NewRecommender(ctx, cfg, source, log)
	if err != nil {
		return nil, err
	}
	log.Info("Catalog loaded", "source", source.Describe(), "build_id", rec.BuildID())
	return rec, nil
}
