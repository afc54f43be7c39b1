package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/service"
	"github.com/animerec/animerec-server/internal/store"
)

// testServer wraps the API server for testing.
type testServer struct {
	*Server
	api humatest.TestAPI
}

// testCatalog distances from "1": 2 at 1 (related), 4 and 5 at 2 (genre),
// 3 at 3 (studio). 5 is outside the popularity window; 6 is isolated.
func testCatalog() catalog.StaticSource {
	return catalog.StaticSource{
		{ID: "1", Title: "Alpha", Aliases: []string{"Alpha English"}, Genres: []string{"Action"}, Studio: "S1", Related: []catalog.ID{"2"}, Popularity: catalog.KnownRank(100)},
		{ID: "2", Title: "Beta", Genres: []string{"Action"}, Studio: "S2", Popularity: catalog.KnownRank(120)},
		{ID: "3", Title: "Gamma", Genres: []string{"Action"}, Studio: "S1", Popularity: catalog.KnownRank(150)},
		{ID: "4", Title: "Delta", Genres: []string{"Action", "Drama"}, Popularity: catalog.KnownRank(90)},
		{ID: "5", Title: "Epsilon", Genres: []string{"Action"}, Popularity: catalog.KnownRank(1000)},
		{ID: "6", Title: "Lonely", Popularity: catalog.KnownRank(50)},
	}
}

// setupTestServer creates a server over the test catalog with an in-memory
// session store. load controls whether a snapshot is published up front.
func setupTestServer(t *testing.T, load bool, opts Options) *testServer {
	t.Helper()

	rec := service.New(testCatalog(), service.Options{}, nil)
	if load {
		_, err := rec.Reload(context.Background())
		require.NoError(t, err)
	}

	st, err := store.New(store.Options{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := NewServer(rec, st, opts, nil)
	return &testServer{Server: s, api: humatest.Wrap(t, s.api)}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func requireError(t *testing.T, resp *httptest.ResponseRecorder, status int, code string) APIError {
	t.Helper()
	require.Equal(t, status, resp.Code, resp.Body.String())
	apiErr := decode[APIError](t, resp)
	assert.Equal(t, code, apiErr.Code)
	return apiErr
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/api/v1/nope")
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	ts.api.Get("/health")

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "animerec_api_requests_total")
	assert.Contains(t, w.Body.String(), "animerec_graph_vertices")
}

func TestCORS_Preflight(t *testing.T) {
	ts := setupTestServer(t, true, Options{CORSOrigins: []string{"https://example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/catalog", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenAPIDocument(t *testing.T) {
	ts := setupTestServer(t, true, Options{Version: "1.2.3"})

	doc := ts.API().OpenAPI()
	assert.Equal(t, "1.2.3", doc.Info.Version)
	assert.Contains(t, doc.Paths, "/api/v1/items/{id}/recommendations")
	assert.Contains(t, doc.Paths, "/api/v1/sessions/{id}/another")
}
