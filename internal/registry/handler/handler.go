package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/models"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/httputil"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// Store lists the voter roll.
type Store interface {
	ListAll(ctx context.Context) ([]models.Voter, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/list_voters", h.HandleListVoters)
}

type listVotersResponse struct {
	Voters []models.Voter `json:"voters"`
}

// HandleListVoters handles GET /api/list_voters.
func (h *Handler) HandleListVoters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	voters, err := h.store.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list voters",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list voters"))
		return
	}
	if voters == nil {
		voters = []models.Voter{}
	}
	httputil.WriteJSON(w, http.StatusOK, listVotersResponse{Voters: voters})
}
