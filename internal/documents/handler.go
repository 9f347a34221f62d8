package documents

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

// Enqueuer submits document delivery jobs. The request returns as soon as
// the job is queued; rendering and SMTP never block the caller.
type Enqueuer interface {
	EnqueueQuoteEmail(ctx context.Context, orgID, quoteID int64, recipient string) error
	EnqueuePurchaseOrderEmail(ctx context.Context, orgID, orderID int64, recipient string) error
}

type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer Enqueuer
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer, validate: validator.New()}
}

// MountQuoteRoutes registers PDF endpoints inside the quotes subrouter.
func (h *Handler) MountQuoteRoutes(r chi.Router) {
	r.Get("/{id}/pdf", h.downloadQuote)
	r.Post("/{id}/send", h.sendQuote)
}

// MountPurchaseOrderRoutes registers PDF endpoints inside the purchase
// orders subrouter.
func (h *Handler) MountPurchaseOrderRoutes(r chi.Router) {
	r.Get("/{id}/pdf", h.downloadPurchaseOrder)
	r.Post("/{id}/send", h.sendPurchaseOrder)
}

type sendRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
}

func (h *Handler) downloadQuote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, filename, err := h.service.RenderQuote(r.Context(), tenancy.OrgFromContext(r.Context()), id)
	if err != nil {
		h.logger.Error("render quote pdf", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	servePDF(w, filename, pdf)
}

func (h *Handler) downloadPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, filename, err := h.service.RenderPurchaseOrder(r.Context(), tenancy.OrgFromContext(r.Context()), id)
	if err != nil {
		h.logger.Error("render purchase order pdf", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	servePDF(w, filename, pdf)
}

func (h *Handler) sendQuote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req sendRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.enqueuer.EnqueueQuoteEmail(r.Context(), tenancy.OrgFromContext(r.Context()), id, req.Recipient); err != nil {
		h.logger.Error("enqueue quote email", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) sendPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req sendRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.enqueuer.EnqueuePurchaseOrderEmail(r.Context(), tenancy.OrgFromContext(r.Context()), id, req.Recipient); err != nil {
		h.logger.Error("enqueue purchase order email", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func servePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) decode(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return httpx.ErrValidation
	}
	if err := h.validate.Struct(target); err != nil {
		return httpx.ErrValidation
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrValidation
	}
	return id, nil
}
