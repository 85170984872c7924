package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/models"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/service"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/httputil"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// Service is the ballot behaviour the handler exposes.
type Service interface {
	CastVote(ctx context.Context, cmd service.CastVoteCommand) (*models.Party, error)
	ListParties(ctx context.Context) ([]models.Party, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the public routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/list_parties", h.HandleListParties)
}

// RegisterSessionRoutes mounts routes that expect the session middleware.
func (h *Handler) RegisterSessionRoutes(r chi.Router) {
	r.Post("/api/vote", h.HandleVote)
}

type listPartiesResponse struct {
	Parties []models.Party `json:"parties"`
}

type votedParty struct {
	Name      string `json:"name"`
	VoteCount int64  `json:"voteCount"`
}

type voteResponse struct {
	Message string     `json:"message"`
	Party   votedParty `json:"party"`
}

// HandleListParties handles GET /api/list_parties.
func (h *Handler) HandleListParties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parties, err := h.service.ListParties(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list parties",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if parties == nil {
		parties = []models.Party{}
	}
	httputil.WriteJSON(w, http.StatusOK, listPartiesResponse{Parties: parties})
}

// HandleVote handles POST /api/vote. The session subject must be the voter.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if requestcontext.Subject(ctx) != req.ParsedNationalID() {
		h.logger.WarnContext(ctx, "session subject does not match aadhaar",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "session does not belong to this aadhaar"))
		return
	}

	party, err := h.service.CastVote(ctx, service.CastVoteCommand{
		NationalID: req.ParsedNationalID(),
		VoterID:    req.ParsedVoterID(),
		PartyID:    req.ParsedPartyID(),
	})
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to cast vote", "request_id", requestID, "error", err)
		} else {
			h.logger.WarnContext(ctx, "vote rejected", "request_id", requestID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, voteResponse{
		Message: "vote recorded",
		Party:   votedParty{Name: party.Name, VoteCount: party.VoteCount},
	})
}
