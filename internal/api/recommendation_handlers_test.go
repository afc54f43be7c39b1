package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(items []ItemSummary) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestGetClosest(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/items/1/closest")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	closest := decode[ClosestResponse](t, resp)
	assert.Equal(t, "1", closest.Source)
	assert.Equal(t, "2", closest.Item.ID)
	assert.Equal(t, "Beta", closest.Item.Title)
}

func TestGetClosest_Errors(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/items/6/closest")
	requireError(t, resp, http.StatusNotFound, "NO_RECOMMENDATION")

	resp = ts.api.Get("/api/v1/items/999/closest")
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestGetTopN(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"default n", "/api/v1/items/1/top", []string{"2", "4", "3"}},
		{"explicit n", "/api/v1/items/1/top?n=2", []string{"2", "4"}},
		{"zero", "/api/v1/items/1/top?n=0", []string{}},
		{"isolated", "/api/v1/items/6/top", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get(tt.path)

			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			top := decode[TopNResponse](t, resp)
			assert.Equal(t, tt.want, ids(top.Items))
		})
	}
}

func TestGetTopN_Validation(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/items/1/top?n=101")
	requireError(t, resp, http.StatusUnprocessableEntity, "VALIDATION")

	resp = ts.api.Get("/api/v1/items/1/top?n=-1")
	requireError(t, resp, http.StatusUnprocessableEntity, "VALIDATION")
}

func TestGetRecommendations(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/items/1/recommendations")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	rec := decode[RecommendationsResponse](t, resp)
	assert.True(t, rec.Found)
	require.NotNil(t, rec.Closest)
	assert.Equal(t, "2", rec.Closest.ID)
	assert.Equal(t, []string{"4", "3"}, ids(rec.Alternatives))
	assert.Equal(t, ts.recommender.BuildID(), rec.BuildID)
}

func TestGetRecommendations_Isolated(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/items/6/recommendations")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	rec := decode[RecommendationsResponse](t, resp)
	assert.False(t, rec.Found)
	assert.Nil(t, rec.Closest)
	assert.Empty(t, rec.Alternatives)
}
