package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "reloadCatalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/reload",
		Summary:     "Reload catalog",
		Description: "Rebuilds the graph from the catalog source and publishes it. On failure the previous snapshot stays published",
		Tags:        []string{"Admin"},
	}, s.handleReload)
}

func (s *Server) handleReload(ctx context.Context, _ *struct{}) (*CatalogOutput, error) {
	snap, err := s.recommender.Reload(ctx)
	if err != nil {
		s.logger.Warn("catalog reload failed", "error", err)
		return nil, apiError(err)
	}
	return &CatalogOutput{Body: catalogResponse(snap)}, nil
}
