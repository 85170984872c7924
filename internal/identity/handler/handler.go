package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/service"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/httputil"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

// Service is the identity behaviour the handler exposes.
type Service interface {
	Register(ctx context.Context, cmd service.RegisterCommand) (*models.Identity, error)
	Authenticate(ctx context.Context, cmd service.AuthenticateCommand) (*service.AuthResult, error)
	Link(ctx context.Context, cmd service.LinkCommand) (*models.Identity, error)
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
	r.Post("/api/register", h.HandleRegister)
	r.Post("/api/login_face", h.HandleLoginFace)
}

// RegisterSessionRoutes mounts routes that expect the session middleware.
func (h *Handler) RegisterSessionRoutes(r chi.Router) {
	r.Post("/api/link_voter", h.HandleLinkVoter)
}

// HandleRegister handles POST /api/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	identity, err := h.service.Register(ctx, service.RegisterCommand{
		Name:       req.Name,
		NationalID: req.ParsedNationalID(),
		Phone:      req.ParsedPhone(),
		Image:      req.ParsedImage(),
	})
	if err != nil {
		h.logFailure(ctx, "registration failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerResponse{
		Message: "registered",
		User:    registeredUser{Name: identity.Name, Aadhaar: identity.NationalID},
	})
}

// HandleLoginFace handles POST /api/login_face.
func (h *Handler) HandleLoginFace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Authenticate(ctx, service.AuthenticateCommand{
		NationalID: req.ParsedNationalID(),
		Phone:      req.ParsedPhone(),
		Image:      req.ParsedImage(),
	})
	if err != nil {
		h.logFailure(ctx, "face login failed", err)
		httputil.WriteError(w, err)
		return
	}

	resp := loginResponse{
		Success: true,
		User: loginUser{
			Name:    result.Identity.Name,
			Aadhaar: result.Identity.NationalID,
		},
		Distance: result.Distance,
		Token:    result.Token,
	}
	if result.Identity.IsLinked() {
		voterID := result.Identity.LinkedVoterID
		resp.User.VoterID = &voterID
	}
	if !result.TokenExpiresAt.IsZero() {
		resp.ExpiresAt = &result.TokenExpiresAt
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleLinkVoter handles POST /api/link_voter. The session subject must be
// the identity being linked.
func (h *Handler) HandleLinkVoter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LinkRequest](w, r, h.logger, ctx, requestID)
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

	identity, err := h.service.Link(ctx, service.LinkCommand{
		NationalID:  req.ParsedNationalID(),
		Phone:       req.ParsedPhone(),
		VoterID:     req.ParsedVoterID(),
		DateOfBirth: req.DOB,
	})
	if err != nil {
		h.logFailure(ctx, "voter link failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, linkResponse{
		Message: "linked",
		User:    linkedUser{Aadhaar: identity.NationalID, VoterID: identity.LinkedVoterID},
	})
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
