package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/animerec/animerec-server/internal/catalog"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getClosest",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}/closest",
		Summary:     "Closest item",
		Description: "Returns the most popular item at the smallest similarity distance within the popularity window",
		Tags:        []string{"Recommendations"},
	}, s.handleGetClosest)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTopN",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}/top",
		Summary:     "Top N similar items",
		Description: "Returns up to n items ordered by distance, then popularity difference, then ID",
		Tags:        []string{"Recommendations"},
	}, s.handleGetTopN)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}/recommendations",
		Summary:     "Recommendations",
		Description: "Returns the closest item plus alternatives that exclude it",
		Tags:        []string{"Recommendations"},
	}, s.handleGetRecommendations)
}

// === DTOs ===

// ItemPathInput identifies the source item.
type ItemPathInput struct {
	ID string `path:"id" doc:"Source item ID"`
}

// TopNInput contains parameters for a top-N query.
type TopNInput struct {
	ID string `path:"id" doc:"Source item ID"`
	N  int    `query:"n" default:"6" minimum:"0" maximum:"100" doc:"Maximum number of results"`
}

// ClosestResponse contains the single best recommendation.
type ClosestResponse struct {
	Source string      `json:"source" doc:"Source item ID"`
	Item   ItemSummary `json:"item" doc:"Recommended item"`
}

// ClosestOutput wraps the closest response for Huma.
type ClosestOutput struct {
	Body ClosestResponse
}

// TopNResponse contains a ranked list of similar items.
type TopNResponse struct {
	Source string        `json:"source" doc:"Source item ID"`
	Items  []ItemSummary `json:"items" doc:"Ranked items"`
}

// TopNOutput wraps the top-N response for Huma.
type TopNOutput struct {
	Body TopNResponse
}

// RecommendationsResponse contains the closest item and alternatives.
type RecommendationsResponse struct {
	Source       string        `json:"source" doc:"Source item ID"`
	Found        bool          `json:"found" doc:"Whether a closest item exists"`
	Closest      *ItemSummary  `json:"closest,omitempty" doc:"Closest item, absent when none qualifies"`
	Alternatives []ItemSummary `json:"alternatives" doc:"Ranked alternatives excluding the closest item"`
	BuildID      string        `json:"build_id" doc:"Snapshot build the answer was computed on"`
}

// RecommendationsOutput wraps the recommendations response for Huma.
type RecommendationsOutput struct {
	Body RecommendationsResponse
}

// === Handlers ===

func (s *Server) handleGetClosest(_ context.Context, input *ItemPathInput) (*ClosestOutput, error) {
	id, err := s.recommender.Closest(catalog.ID(input.ID))
	if err != nil {
		return nil, apiError(err)
	}
	item, err := s.summary(id)
	if err != nil {
		return nil, apiError(err)
	}
	return &ClosestOutput{Body: ClosestResponse{Source: input.ID, Item: item}}, nil
}

func (s *Server) handleGetTopN(_ context.Context, input *TopNInput) (*TopNOutput, error) {
	ids, err := s.recommender.TopN(catalog.ID(input.ID), input.N)
	if err != nil {
		return nil, apiError(err)
	}
	items, err := s.summaries(ids)
	if err != nil {
		return nil, apiError(err)
	}
	return &TopNOutput{Body: TopNResponse{Source: input.ID, Items: items}}, nil
}

func (s *Server) handleGetRecommendations(_ context.Context, input *ItemPathInput) (*RecommendationsOutput, error) {
	rec, err := s.recommender.Recommend(catalog.ID(input.ID))
	if err != nil {
		return nil, apiError(err)
	}

	resp := RecommendationsResponse{
		Source:  string(rec.Source),
		Found:   rec.Found,
		BuildID: rec.BuildID,
	}
	if rec.Found {
		closest, err := s.summary(rec.Closest)
		if err != nil {
			return nil, apiError(err)
		}
		resp.Closest = &closest
	}
	if resp.Alternatives, err = s.summaries(rec.Alternatives); err != nil {
		return nil, apiError(err)
	}

	return &RecommendationsOutput{Body: resp}, nil
}
