package quotes

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/status", h.updateStatus)

	r.Post("/{id}/lines", h.addLine)
	r.Put("/{id}/lines/{lineID}", h.updateLine)
	r.Delete("/{id}/lines/{lineID}", h.deleteLine)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	customerID, _ := strconv.ParseInt(r.URL.Query().Get("customer_id"), 10, 64)
	quotes, total, err := h.service.List(r.Context(), tenancy.OrgFromContext(r.Context()), ListRequest{
		CustomerID: customerID,
		Status:     Status(r.URL.Query().Get("status")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.logger.Error("list quotes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotes": quotes, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	quote, err := h.service.Get(r.Context(), tenancy.OrgFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	var userID int64
	if principal := tenancy.PrincipalFromContext(r.Context()); principal != nil {
		userID = principal.UserID
	}
	quote, err := h.service.Create(r.Context(), tenancy.OrgFromContext(r.Context()), userID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateQuoteRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	quote, err := h.service.Update(r.Context(), tenancy.OrgFromContext(r.Context()), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateStatusRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	quote, err := h.service.UpdateStatus(r.Context(), tenancy.OrgFromContext(r.Context()), id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), tenancy.OrgFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload LinePayload
	if err := h.decode(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	quote, err := h.service.AddLine(r.Context(), tenancy.OrgFromContext(r.Context()), id, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	lineID, err := pathID(r, "lineID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload LinePayload
	if err := h.decode(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	quote, err := h.service.UpdateLine(r.Context(), tenancy.OrgFromContext(r.Context()), id, lineID, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) deleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	lineID, err := pathID(r, "lineID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	quote, err := h.service.DeleteLine(r.Context(), tenancy.OrgFromContext(r.Context()), id, lineID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
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

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrValidation
	}
	return id, nil
}
