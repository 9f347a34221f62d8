package orgs

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

// MountAdminRoutes registers the super-admin organization endpoints. The
// caller mounts these behind the super_admin role gate.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/subscription", h.showSubscription)
	r.Put("/{id}/subscription", h.setSubscription)
}

// Account serves the caller's own organization and subscription. Mounted
// behind authentication only, never behind the subscription gate.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Account(r.Context(), tenancy.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("load account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	orgs, total, err := h.service.List(r.Context(), ListRequest{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error("list organizations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"organizations": orgs, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	org, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, org)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload OrganizationPayload
	if err := h.decode(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	org, err := h.service.Create(r.Context(), payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, org)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload OrganizationPayload
	if err := h.decode(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	org, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, org)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) showSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sub, err := h.service.GetSubscription(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) setSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload SubscriptionPayload
	if err := h.decode(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sub, err := h.service.SetSubscription(r.Context(), id, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
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
