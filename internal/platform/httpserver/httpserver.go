package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/atomic"

	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/httputil"
)

// New builds an HTTP server with sane defaults for this project.
// Write timeout leaves room for descriptor extraction on large captures.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Health serves liveness and readiness. Draining flips readiness off so load
// balancers stop routing before shutdown.
type Health struct {
	ready atomic.Bool
	log   *slog.Logger
}

// NewHealth returns a Health that starts ready.
func NewHealth(log *slog.Logger) *Health {
	h := &Health{log: log}
	h.ready.Store(true)
	return h
}

// Register mounts the health endpoints.
func (h *Health) Register(r chi.Router) {
	r.Get("/livez", h.HandleLivez)
	r.Get("/readyz", h.HandleReadyz)
	r.Get("/drain", h.HandleDrain)
	r.Get("/undrain", h.HandleUndrain)
}

// Ready reports the readiness flag.
func (h *Health) Ready() bool {
	return h.ready.Load()
}

// Drain marks the server not ready. It returns false if it was already draining.
func (h *Health) Drain() bool {
	return h.ready.Swap(false)
}

func (h *Health) HandleLivez(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *Health) HandleReadyz(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Load() {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Health) HandleDrain(w http.ResponseWriter, r *http.Request) {
	if !h.Drain() {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "already draining"})
		return
	}
	h.log.InfoContext(r.Context(), "server marked as not ready")
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "draining"})
}

func (h *Health) HandleUndrain(w http.ResponseWriter, r *http.Request) {
	if h.ready.Swap(true) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "already ready"})
		return
	}
	h.log.InfoContext(r.Context(), "server marked as ready")
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
