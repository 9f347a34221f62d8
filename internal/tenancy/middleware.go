package tenancy

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/tradewind-erp/tradewind/internal/shared"
)

type principalContextKey struct{}
type orgContextKey struct{}

// ContextWithPrincipal stores the authenticated principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ContextWithOrg stores the resolved organization ID in context.
func ContextWithOrg(ctx context.Context, orgID int64) context.Context {
	return context.WithValue(ctx, orgContextKey{}, orgID)
}

// OrgFromContext extracts the resolved organization ID from context. Behind
// RequireOrg it is always set: members resolve to their own organization,
// super admins to the one they named.
func OrgFromContext(ctx context.Context) int64 {
	orgID, _ := ctx.Value(orgContextKey{}).(int64)
	return orgID
}

// Middleware wires the tenancy gate into HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAuth resolves the session user into a Principal and stores it in the
// request context. Requests without a valid logged-in session are rejected.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		principal, err := m.Service.Principal(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("resolve principal", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireRole ensures the principal's role meets the required level.
func (m Middleware) RequireRole(required Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if err := m.Service.Authorize(*principal, required); err != nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOrg resolves and injects the caller's organization, enforcing the
// subscription check. Members are pinned to their own organization. Super
// admins carry no organization of their own and instead name the tenant they
// are operating on through the org_id query parameter; the subscription
// check does not apply to them.
func (m Middleware) RequireOrg(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())
		if principal == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if principal.IsSuperAdmin() {
			orgID, err := strconv.ParseInt(r.URL.Query().Get("org_id"), 10, 64)
			if err != nil || orgID <= 0 {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithOrg(r.Context(), orgID)))
			return
		}
		orgID, err := m.Service.ResolveTenancy(r.Context(), *principal)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("tenancy gate rejected request",
					slog.Int64("user_id", principal.UserID), slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithOrg(r.Context(), orgID)))
	})
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("parse session user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}
