package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCatalog(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/catalog")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	info := decode[CatalogResponse](t, resp)
	assert.Equal(t, ts.recommender.BuildID(), info.BuildID)
	assert.Equal(t, "static", info.Source)
	assert.Equal(t, 6, info.Stats.Vertices)
	assert.False(t, info.BuiltAt.IsZero())
}

func TestGetCatalog_NotLoaded(t *testing.T) {
	ts := setupTestServer(t, false, Options{})

	resp := ts.api.Get("/api/v1/catalog")
	requireError(t, resp, http.StatusServiceUnavailable, "UNAVAILABLE")
}

func TestResolve(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	tests := []struct {
		name  string
		title string
		id    string
	}{
		{"canonical", "Alpha", "1"},
		{"alias", "Alpha English", "1"},
		{"case and whitespace", "  beta ", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/resolve?title=" + url.QueryEscape(tt.title))

			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			item := decode[ItemSummary](t, resp)
			assert.Equal(t, tt.id, item.ID)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/resolve?title=" + url.QueryEscape("Unknown Show"))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = ts.api.Get("/api/v1/resolve")
	requireError(t, resp, http.StatusUnprocessableEntity, "VALIDATION")
}

func TestGetItem(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/items/1")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	item := decode[ItemResponse](t, resp)
	assert.Equal(t, "1", item.ID)
	assert.Equal(t, "Alpha", item.Title)
	require.NotNil(t, item.Popularity)
	assert.Equal(t, 100, *item.Popularity)
	assert.Equal(t, []string{"Alpha English"}, item.Aliases)
	assert.Equal(t, []string{"Action"}, item.Genres)
	assert.Equal(t, "S1", item.Studio)
	assert.Equal(t, []string{"2"}, item.Related)
}

func TestGetItem_NotFound(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/items/999")
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}
