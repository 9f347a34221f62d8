package tenancy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRequireOrg(repo *stubGateRepo) (http.Handler, *int64) {
	var seen int64
	m := Middleware{Service: NewService(repo)}
	h := m.RequireOrg(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = OrgFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func doRequireOrg(t *testing.T, h http.Handler, target string, p *Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if p != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), p))
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestRequireOrgResolvesMemberOrganization(t *testing.T) {
	repo := &stubGateRepo{subscriptions: map[int64]*Subscription{
		7: {OrganizationID: 7, Status: SubscriptionActive, Indefinite: true},
	}}
	h, seen := newRequireOrg(repo)

	res := doRequireOrg(t, h, "/quotes", &Principal{
		UserID:         1,
		Role:           RoleOrgOwner,
		OrganizationID: int64Ptr(7),
	})

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, int64(7), *seen)
}

func TestRequireOrgRejectsLapsedSubscription(t *testing.T) {
	repo := &stubGateRepo{subscriptions: map[int64]*Subscription{
		7: {OrganizationID: 7, Status: SubscriptionExpired},
	}}
	h, _ := newRequireOrg(repo)

	res := doRequireOrg(t, h, "/quotes", &Principal{
		UserID:         1,
		Role:           RoleOrgOwner,
		OrganizationID: int64Ptr(7),
	})

	require.Equal(t, http.StatusForbidden, res.Code)
}

// Super admins bypass the subscription check but must name the tenant they
// act on, so every repository query stays org-scoped.
func TestRequireOrgSuperAdminTargetsOrg(t *testing.T) {
	h, seen := newRequireOrg(&stubGateRepo{})

	res := doRequireOrg(t, h, "/quotes?org_id=42", &Principal{
		UserID: 9,
		Role:   RoleSuperAdmin,
	})

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, int64(42), *seen)
}

func TestRequireOrgSuperAdminWithoutTarget(t *testing.T) {
	h, _ := newRequireOrg(&stubGateRepo{})

	res := doRequireOrg(t, h, "/quotes", &Principal{UserID: 9, Role: RoleSuperAdmin})
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = doRequireOrg(t, h, "/quotes?org_id=0", &Principal{UserID: 9, Role: RoleSuperAdmin})
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRequireOrgWithoutPrincipal(t *testing.T) {
	h, _ := newRequireOrg(&stubGateRepo{})

	res := doRequireOrg(t, h, "/quotes", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
