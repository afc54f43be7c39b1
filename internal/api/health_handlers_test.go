package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t, true, Options{})

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	health := decode[HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, ts.recommender.BuildID(), health.BuildID)
	assert.Equal(t, "healthy", health.Components["catalog"].Status)
	assert.Equal(t, "6 items", health.Components["catalog"].Message)
	assert.Equal(t, "0 active sessions", health.Components["sessions"].Message)
}

func TestHealthCheck_CatalogNotLoaded(t *testing.T) {
	ts := setupTestServer(t, false, Options{})

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	health := decode[HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Empty(t, health.BuildID)
	assert.Equal(t, "unhealthy", health.Components["catalog"].Status)
}

func TestFormatSessionCount(t *testing.T) {
	assert.Equal(t, "0 active sessions", formatSessionCount(0))
	assert.Equal(t, "1 active session", formatSessionCount(1))
	assert.Equal(t, "12 active sessions", formatSessionCount(12))
}
