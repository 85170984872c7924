package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/parties/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/parties/abc", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	count := testutil.CollectAndCount(m.RequestDuration, "matdaan_http_request_duration_seconds")
	assert.Equal(t, 1, count)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.InFlight))
}

func TestNilMetricsPassesThrough(t *testing.T) {
	var m *Metrics
	called := false
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
