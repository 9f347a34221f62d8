package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tradewind-erp/tradewind/internal/auth"
	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/customers"
	"github.com/tradewind-erp/tradewind/internal/documents"
	"github.com/tradewind-erp/tradewind/internal/orgs"
	"github.com/tradewind-erp/tradewind/internal/purchaseorders"
	"github.com/tradewind-erp/tradewind/internal/quotes"
	"github.com/tradewind-erp/tradewind/internal/shared"
	"github.com/tradewind-erp/tradewind/internal/suppliers"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
	"github.com/tradewind-erp/tradewind/internal/users"
	"github.com/tradewind-erp/tradewind/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Gate           tenancy.Middleware

	AuthHandler          *auth.Handler
	OrgsHandler          *orgs.Handler
	UsersHandler         *users.Handler
	CatalogHandler       *catalog.Handler
	CustomersHandler     *customers.Handler
	SuppliersHandler     *suppliers.Handler
	QuotesHandler        *quotes.Handler
	PurchaseOrderHandler *purchaseorders.Handler
	DocumentsHandler     *documents.Handler
	JobHandler           *jobs.Handler
}

// NewRouter constructs the chi.Router with Tradewind defaults.
//
// Three concentric zones: /auth and /healthz are open; /account sits behind
// authentication only, so owners of an expired organization can still see
// why they are locked out; everything tenant-scoped additionally passes the
// subscription gate.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.Gate.RequireAuth)

		r.Get("/account", params.OrgsHandler.Account)

		r.Route("/users", func(r chi.Router) {
			r.Use(params.Gate.RequireRole(tenancy.RoleOrgOwner))
			params.UsersHandler.MountRoutes(r)
		})

		r.Route("/admin/organizations", func(r chi.Router) {
			r.Use(params.Gate.RequireRole(tenancy.RoleSuperAdmin))
			params.OrgsHandler.MountAdminRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(params.Gate.RequireOrg)

			r.Route("/pricelists", params.CatalogHandler.MountRoutes)
			r.Route("/customers", params.CustomersHandler.MountRoutes)
			r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
			r.Route("/quotes", func(r chi.Router) {
				params.QuotesHandler.MountRoutes(r)
				params.DocumentsHandler.MountQuoteRoutes(r)
			})
			r.Route("/purchase-orders", func(r chi.Router) {
				params.PurchaseOrderHandler.MountRoutes(r)
				params.DocumentsHandler.MountPurchaseOrderRoutes(r)
			})
		})
	})

	r.Route("/jobs", params.JobHandler.MountRoutes)

	return r
}
