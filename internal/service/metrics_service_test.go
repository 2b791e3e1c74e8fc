package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutoring-admin-api/internal/calendar"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/calendar", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/calendar/sync", http.StatusOK, 30*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordBatchOp(calendar.OpCreate, OutcomeSuccess, 3)
	m.RecordBatchOp(calendar.OpDelete, OutcomeSuccess, 0)
	m.RecordReportJob(OutcomeFailure)

	s := m.Snapshot()
	assert.Equal(t, uint64(2), s.RequestsTotal)
	assert.InDelta(t, 20.0, s.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), s.CacheHits)
	assert.Equal(t, uint64(1), s.CacheMisses)
	assert.InDelta(t, 2.0/3.0, s.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(3), s.BatchOperations)
	assert.Equal(t, uint64(1), s.ReportJobs)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.batchOps.WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reportJobs.WithLabelValues(OutcomeFailure)))
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordBatchOp(calendar.OpPatch, OutcomeFailure, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `calendar_batch_operations_total{op="patch",outcome="failure"} 1`))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.RecordBatchOp(calendar.OpCreate, OutcomeSuccess, 1)
		m.RecordReportJob(OutcomeSuccess)
	})
	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
