// Package metrics exposes Prometheus instrumentation for graph builds,
// recommendation queries, HTTP traffic and sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeEmpty    = "no_recommendation"
	OutcomeError    = "error"
)

var (
	// Graph build metrics
	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "animerec_graph_build_duration_seconds",
			Help:    "Duration of similarity graph builds in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_graph_builds_total",
			Help: "Total number of graph builds by result",
		},
		[]string{"result"}, // "success", "error"
	)

	GraphVertices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animerec_graph_vertices",
			Help: "Number of vertices in the published graph",
		},
	)

	GraphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animerec_graph_edges",
			Help: "Number of undirected edges in the published graph",
		},
	)

	GraphAliases = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animerec_graph_aliases",
			Help: "Number of distinct normalized titles in the alias index",
		},
	)

	// Query metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_queries_total",
			Help: "Total number of recommendation queries",
		},
		[]string{"operation", "outcome"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_query_duration_seconds",
			Help:    "Recommendation query latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "status_code"},
	)

	APIRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animerec_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
	)

	// Session metrics
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_session_transitions_total",
			Help: "Total number of session state transitions",
		},
		[]string{"from", "to"},
	)
)

// RecordBuild records one graph build attempt and, on success, the size of
// the published graph.
func RecordBuild(duration time.Duration, vertices, edges, aliases int, err error) {
	BuildDuration.Observe(duration.Seconds())
	if err != nil {
		BuildsTotal.WithLabelValues("error").Inc()
		return
	}
	BuildsTotal.WithLabelValues("success").Inc()
	GraphVertices.Set(float64(vertices))
	GraphEdges.Set(float64(edges))
	GraphAliases.Set(float64(aliases))
}

// RecordQuery records a recommendation query.
func RecordQuery(operation, outcome string, duration time.Duration) {
	QueriesTotal.WithLabelValues(operation, outcome).Inc()
	QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, statusCode string) {
	APIRequestsTotal.WithLabelValues(method, statusCode).Inc()
}

// RecordRateLimitHit records a rejected request.
func RecordRateLimitHit() {
	APIRateLimitHits.Inc()
}

// RecordSessionTransition records a session state change.
func RecordSessionTransition(from, to string) {
	SessionTransitions.WithLabelValues(from, to).Inc()
}
