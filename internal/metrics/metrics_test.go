package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBuild(t *testing.T) {
	successBefore := testutil.ToFloat64(BuildsTotal.WithLabelValues("success"))
	errorBefore := testutil.ToFloat64(BuildsTotal.WithLabelValues("error"))

	RecordBuild(150*time.Millisecond, 12, 30, 40, nil)

	assert.InDelta(t, successBefore+1, testutil.ToFloat64(BuildsTotal.WithLabelValues("success")), 0.001)
	assert.InDelta(t, 12, testutil.ToFloat64(GraphVertices), 0.001)
	assert.InDelta(t, 30, testutil.ToFloat64(GraphEdges), 0.001)
	assert.InDelta(t, 40, testutil.ToFloat64(GraphAliases), 0.001)

	RecordBuild(time.Second, 0, 0, 0, errors.New("load failed"))

	assert.InDelta(t, errorBefore+1, testutil.ToFloat64(BuildsTotal.WithLabelValues("error")), 0.001)
	assert.InDelta(t, 12, testutil.ToFloat64(GraphVertices), 0.001, "failed build keeps the published gauges")
}

func TestRecordQuery(t *testing.T) {
	tests := []struct {
		operation string
		outcome   string
	}{
		{"closest", OutcomeOK},
		{"closest", OutcomeEmpty},
		{"resolve", OutcomeNotFound},
		{"top_n", OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.operation+"/"+tt.outcome, func(t *testing.T) {
			before := testutil.ToFloat64(QueriesTotal.WithLabelValues(tt.operation, tt.outcome))
			RecordQuery(tt.operation, tt.outcome, 2*time.Millisecond)
			after := testutil.ToFloat64(QueriesTotal.WithLabelValues(tt.operation, tt.outcome))
			assert.InDelta(t, before+1, after, 0.001)
		})
	}
}

func TestRecordAPIRequestAndRateLimit(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "200"))
	RecordAPIRequest("GET", "200")
	assert.InDelta(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "200")), 0.001)

	hits := testutil.ToFloat64(APIRateLimitHits)
	RecordRateLimitHit()
	assert.InDelta(t, hits+1, testutil.ToFloat64(APIRateLimitHits), 0.001)
}

func TestRecordSessionTransition(t *testing.T) {
	before := testutil.ToFloat64(SessionTransitions.WithLabelValues("idle", "searching"))
	RecordSessionTransition("idle", "searching")
	assert.InDelta(t, before+1, testutil.ToFloat64(SessionTransitions.WithLabelValues("idle", "searching")), 0.001)
}
