package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestHealthDrainCycle(t *testing.T) {
	h := NewHealth(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/livez").Code)
	assert.Equal(t, http.StatusOK, get("/readyz").Code)

	assert.Contains(t, get("/drain").Body.String(), `"draining"`)
	assert.Contains(t, get("/drain").Body.String(), "already draining")
	assert.Equal(t, http.StatusServiceUnavailable, get("/readyz").Code)
	assert.Equal(t, http.StatusOK, get("/livez").Code)

	assert.Contains(t, get("/undrain").Body.String(), `"ready"`)
	assert.Equal(t, http.StatusOK, get("/readyz").Code)
}

func TestNewAppliesTimeouts(t *testing.T) {
	srv := New(":0", http.NotFoundHandler())
	assert.Equal(t, ":0", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
	assert.NotZero(t, srv.WriteTimeout)
}
