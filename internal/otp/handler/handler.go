package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/otp/service"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/httputil"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

type Service interface {
	Send(ctx context.Context, nationalID id.NationalID, phone id.Phone) (*service.Issued, error)
	Verify(ctx context.Context, nationalID id.NationalID, phone id.Phone, code string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/send_otp", h.HandleSend)
	r.Post("/api/verify_otp", h.HandleVerify)
}

// SendRequest is the body of POST /api/send_otp.
type SendRequest struct {
	Aadhaar string `json:"aadhaar"`
	Phone   string `json:"phone"`

	parsedNationalID id.NationalID
	parsedPhone      id.Phone
}

func (r *SendRequest) Validate() error {
	if strings.TrimSpace(r.Aadhaar) == "" || strings.TrimSpace(r.Phone) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "aadhaar and phone required")
	}
	var err error
	if r.parsedNationalID, err = id.ParseNationalID(r.Aadhaar); err != nil {
		return err
	}
	r.parsedPhone, err = id.ParsePhone(r.Phone)
	return err
}

// VerifyRequest is the body of POST /api/verify_otp.
type VerifyRequest struct {
	Aadhaar string `json:"aadhaar"`
	Phone   string `json:"phone"`
	OTP     string `json:"otp"`

	parsedNationalID id.NationalID
	parsedPhone      id.Phone
}

func (r *VerifyRequest) Validate() error {
	r.OTP = strings.TrimSpace(r.OTP)
	if strings.TrimSpace(r.Aadhaar) == "" || strings.TrimSpace(r.Phone) == "" || r.OTP == "" {
		return dErrors.New(dErrors.CodeBadRequest, "aadhaar, phone, otp required")
	}
	var err error
	if r.parsedNationalID, err = id.ParseNationalID(r.Aadhaar); err != nil {
		return err
	}
	r.parsedPhone, err = id.ParsePhone(r.Phone)
	return err
}

type sendResponse struct {
	Message   string    `json:"message"`
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expires_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleSend handles POST /api/send_otp.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	issued, err := h.service.Send(ctx, req.parsedNationalID, req.parsedPhone)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue otp", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sendResponse{
		Message:   "OTP sent (demo)",
		OTP:       issued.Code,
		ExpiresAt: issued.ExpiresAt,
	})
}

// HandleVerify handles POST /api/verify_otp.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.Verify(ctx, req.parsedNationalID, req.parsedPhone, req.OTP); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "otp verified"})
}
