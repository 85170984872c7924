package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/httputil"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

type Exporter interface {
	Export(ctx context.Context) (*Snapshot, error)
}

type Handler struct {
	exporter Exporter
	logger   *slog.Logger
}

func NewHandler(exporter Exporter, logger *slog.Logger) *Handler {
	return &Handler{exporter: exporter, logger: logger}
}

// Register mounts admin routes. The caller applies the admin token guard.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/export_db", h.HandleExport)
}

// HandleExport handles GET /api/export_db.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	snap, err := h.exporter.Export(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to export data", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "data exported",
		"request_id", requestID,
		"users", len(snap.Users),
		"votes", len(snap.Votes),
	)
	httputil.WriteJSON(w, http.StatusOK, ExportResponse(*snap))
}
