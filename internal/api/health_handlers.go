package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	BuildID    string                     `json:"build_id,omitempty" doc:"Published catalog build"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"catalog":  s.checkCatalog(),
		"sessions": s.checkSessions(ctx),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			BuildID:    s.recommender.BuildID(),
			Components: components,
		},
	}, nil
}

// checkCatalog reports whether a snapshot has been published.
func (s *Server) checkCatalog() ComponentHealth {
	snap, err := s.recommender.Snapshot()
	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Message: "catalog not loaded",
		}
	}
	if snap.Graph.Len() == 0 {
		return ComponentHealth{
			Status:  "degraded",
			Message: "catalog is empty",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Message: strconv.Itoa(snap.Graph.Len()) + " items",
	}
}

// checkSessions verifies the session store is readable.
func (s *Server) checkSessions(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "session store not configured",
		}
	}

	start := time.Now()
	count, err := s.store.CountSessions(ctx)
	latency := time.Since(start)
	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "session store read failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: formatSessionCount(count),
	}
}

func formatSessionCount(count int) string {
	switch count {
	case 1:
		return "1 active session"
	default:
		return strconv.Itoa(count) + " active sessions"
	}
}
