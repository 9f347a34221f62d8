package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

// Handler wires HTTP endpoints for pricelist management.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	gate     tenancy.Middleware
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, gate tenancy.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		gate:     gate,
		validate: validator.New(),
	}
}

// MountRoutes registers catalog routes. Pricelist deletion is reserved for
// org owners; everything else is open to every member of the organization.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPricelists)
	r.Post("/", h.createPricelist)
	r.Get("/{id}", h.showPricelist)
	r.Put("/{id}", h.updatePricelist)

	r.Get("/{id}/items", h.listItems)
	r.Post("/{id}/items", h.createItem)
	r.Post("/{id}/items/import", h.importItems)
	r.Get("/{id}/items/{itemID}", h.showItem)
	r.Put("/{id}/items/{itemID}", h.updateItem)
	r.Delete("/{id}/items/{itemID}", h.deleteItem)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRole(tenancy.RoleOrgOwner))
		r.Delete("/{id}", h.deletePricelist)
	})
}

func (h *Handler) listPricelists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.service.ListPricelists(r.Context(), tenancy.OrgFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list pricelists", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"pricelists": lists})
}

func (h *Handler) showPricelist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.GetPricelist(r.Context(), tenancy.OrgFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) createPricelist(w http.ResponseWriter, r *http.Request) {
	var req CreatePricelistRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.CreatePricelist(r.Context(), tenancy.OrgFromContext(r.Context()), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, list)
}

func (h *Handler) updatePricelist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdatePricelistRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.UpdatePricelist(r.Context(), tenancy.OrgFromContext(r.Context()), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) deletePricelist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeletePricelist(r.Context(), tenancy.OrgFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	items, total, err := h.service.ListItems(r.Context(), tenancy.OrgFromContext(r.Context()), id, ListItemsRequest{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (h *Handler) showItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.GetItem(r.Context(), tenancy.OrgFromContext(r.Context()), itemID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload ItemPayload
	if err := h.decode(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.CreateItem(r.Context(), tenancy.OrgFromContext(r.Context()), id, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload ItemPayload
	if err := h.decode(r, &payload); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.UpdateItem(r.Context(), tenancy.OrgFromContext(r.Context()), itemID, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteItem(r.Context(), tenancy.OrgFromContext(r.Context()), itemID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) importItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	count, err := h.service.ImportCSV(r.Context(), tenancy.OrgFromContext(r.Context()), id, r.Body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"imported": count})
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
