package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/graph"
	"github.com/animerec/animerec-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog",
		Summary:     "Get catalog info",
		Description: "Returns the published catalog build and its ingestion statistics",
		Tags:        []string{"Catalog"},
	}, s.handleGetCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "resolveTitle",
		Method:      http.MethodGet,
		Path:        "/api/v1/resolve",
		Summary:     "Resolve title",
		Description: "Maps a title or alias to an item. Matching is exact after trimming and case folding",
		Tags:        []string{"Catalog"},
	}, s.handleResolve)

	huma.Register(s.api, huma.Operation{
		OperationID: "getItem",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}",
		Summary:     "Get item",
		Description: "Returns display metadata for an item",
		Tags:        []string{"Catalog"},
	}, s.handleGetItem)
}

// === DTOs ===

// ItemSummary is the compact form of an item used in result lists.
type ItemSummary struct {
	ID         string `json:"id" doc:"Item ID"`
	Title      string `json:"title" doc:"Canonical title"`
	Popularity *int   `json:"popularity,omitempty" doc:"Popularity rank, lower is more popular"`
	ImageURL   string `json:"image_url,omitempty" doc:"Cover image URL"`
}

// ItemResponse contains full item metadata.
type ItemResponse struct {
	ItemSummary
	Aliases []string `json:"aliases,omitempty" doc:"Alternative titles"`
	Genres  []string `json:"genres,omitempty" doc:"Genres"`
	Studio  string   `json:"studio,omitempty" doc:"Studio"`
	Related []string `json:"related,omitempty" doc:"Related item IDs"`
}

// ItemOutput wraps the item response for Huma.
type ItemOutput struct {
	Body ItemResponse
}

// GetItemInput contains parameters for getting an item.
type GetItemInput struct {
	ID string `path:"id" doc:"Item ID"`
}

// ResolveInput contains parameters for resolving a title.
type ResolveInput struct {
	Title string `query:"title" required:"true" minLength:"1" maxLength:"512" doc:"Title or alias"`
}

// ResolveOutput wraps the resolved item for Huma.
type ResolveOutput struct {
	Body ItemSummary
}

// CatalogResponse describes the published snapshot.
type CatalogResponse struct {
	BuildID string           `json:"build_id" doc:"Snapshot build ID"`
	Source  string           `json:"source" doc:"Where the catalog was loaded from"`
	BuiltAt time.Time        `json:"built_at" doc:"When the snapshot was published"`
	Stats   graph.BuildStats `json:"stats" doc:"Ingestion statistics"`
}

// CatalogOutput wraps the catalog response for Huma.
type CatalogOutput struct {
	Body CatalogResponse
}

// === Handlers ===

func (s *Server) handleGetCatalog(_ context.Context, _ *struct{}) (*CatalogOutput, error) {
	snap, err := s.recommender.Snapshot()
	if err != nil {
		return nil, apiError(err)
	}
	return &CatalogOutput{Body: catalogResponse(snap)}, nil
}

func (s *Server) handleResolve(_ context.Context, input *ResolveInput) (*ResolveOutput, error) {
	id, err := s.recommender.Resolve(input.Title)
	if err != nil {
		return nil, apiError(err)
	}
	summary, err := s.summary(id)
	if err != nil {
		return nil, apiError(err)
	}
	return &ResolveOutput{Body: summary}, nil
}

func (s *Server) handleGetItem(_ context.Context, input *GetItemInput) (*ItemOutput, error) {
	rec, err := s.recommender.Item(catalog.ID(input.ID))
	if err != nil {
		return nil, apiError(err)
	}

	related := make([]string, len(rec.Related))
	for i, id := range rec.Related {
		related[i] = string(id)
	}

	return &ItemOutput{
		Body: ItemResponse{
			ItemSummary: toSummary(rec),
			Aliases:     rec.Aliases,
			Genres:      rec.Genres,
			Studio:      rec.Studio,
			Related:     related,
		},
	}, nil
}

// === Helpers ===

func catalogResponse(snap *service.Snapshot) CatalogResponse {
	return CatalogResponse{
		BuildID: snap.BuildID,
		Source:  snap.Source,
		BuiltAt: snap.BuiltAt,
		Stats:   snap.Stats,
	}
}

func toSummary(rec catalog.Record) ItemSummary {
	summary := ItemSummary{
		ID:       string(rec.ID),
		Title:    rec.Title,
		ImageURL: rec.ImageURL,
	}
	if v, ok := rec.Popularity.Value(); ok {
		summary.Popularity = &v
	}
	return summary
}

// summary looks up the display record for id.
func (s *Server) summary(id catalog.ID) (ItemSummary, error) {
	rec, err := s.recommender.Item(id)
	if err != nil {
		return ItemSummary{}, err
	}
	return toSummary(rec), nil
}

// summaries converts ids into display summaries, preserving order.
func (s *Server) summaries(ids []catalog.ID) ([]ItemSummary, error) {
	out := make([]ItemSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := s.summary(id)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}
