package tenancy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

type stubGateRepo struct {
	principals    map[int64]*Principal
	subscriptions map[int64]*Subscription
}

func (s *stubGateRepo) GetPrincipal(ctx context.Context, userID int64) (*Principal, error) {
	p, ok := s.principals[userID]
	if !ok {
		return nil, httpx.ErrUnauthorized
	}
	return p, nil
}

func (s *stubGateRepo) GetSubscription(ctx context.Context, orgID int64) (*Subscription, error) {
	sub, ok := s.subscriptions[orgID]
	if !ok {
		return nil, httpx.ErrForbidden
	}
	return sub, nil
}

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestRoleOrdering(t *testing.T) {
	require.True(t, RoleOrgOwner.AtLeast(RoleUser))
	require.True(t, RoleOrgOwner.AtLeast(RoleOrgOwner))
	require.False(t, RoleUser.AtLeast(RoleOrgOwner))
	require.True(t, RoleSuperAdmin.AtLeast(RoleAdmin))
	require.False(t, Role("unknown").AtLeast(RoleUser))
}

func TestAuthorizeRoleCheck(t *testing.T) {
	svc := NewService(&stubGateRepo{})

	err := svc.Authorize(Principal{Role: RoleUser}, RoleOrgOwner)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, svc.Authorize(Principal{Role: RoleOrgOwner}, RoleOrgOwner))
	require.NoError(t, svc.Authorize(Principal{Role: RoleAdmin}, RoleOrgOwner))
}

func TestAuthorizeSuperAdminBypass(t *testing.T) {
	svc := NewService(&stubGateRepo{})

	// No organization, no subscription record anywhere: still authorized.
	p := Principal{UserID: 9, Role: RoleSuperAdmin}
	require.NoError(t, svc.Authorize(p, RoleOrgOwner))
	require.NoError(t, svc.Authorize(p, RoleAdmin))
}

func TestResolveTenancyNoOrganization(t *testing.T) {
	svc := NewService(&stubGateRepo{})

	_, err := svc.ResolveTenancy(context.Background(), Principal{UserID: 1, Role: RoleUser})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Contains(t, err.Error(), "no organization")
}

func TestResolveTenancySubscriptionStates(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		name string
		sub  Subscription
		ok   bool
	}{
		{"active indefinite", Subscription{Status: SubscriptionActive, Indefinite: true}, true},
		{"active no end date", Subscription{Status: SubscriptionActive}, true},
		{"active future end", Subscription{Status: SubscriptionActive, PeriodEnd: timePtr(now.Add(24 * time.Hour))}, true},
		{"active lapsed end", Subscription{Status: SubscriptionActive, PeriodEnd: timePtr(now.Add(-time.Minute))}, false},
		{"expired", Subscription{Status: SubscriptionExpired, Indefinite: true}, false},
		{"cancelled", Subscription{Status: SubscriptionCancelled}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := tc.sub
			sub.OrganizationID = 7
			repo := &stubGateRepo{subscriptions: map[int64]*Subscription{7: &sub}}
			svc := NewService(repo)

			orgID, err := svc.ResolveTenancy(context.Background(), Principal{
				UserID:         1,
				Role:           RoleOrgOwner,
				OrganizationID: int64Ptr(7),
			})
			if tc.ok {
				require.NoError(t, err)
				require.Equal(t, int64(7), orgID)
			} else {
				require.ErrorIs(t, err, httpx.ErrForbidden)
			}
		})
	}
}

func TestResolveTenancyExpiredRegardlessOfRole(t *testing.T) {
	repo := &stubGateRepo{subscriptions: map[int64]*Subscription{
		3: {OrganizationID: 3, Status: SubscriptionExpired},
	}}
	svc := NewService(repo)

	for _, role := range []Role{RoleUser, RoleOrgOwner, RoleAdmin} {
		_, err := svc.ResolveTenancy(context.Background(), Principal{
			UserID:         1,
			Role:           role,
			OrganizationID: int64Ptr(3),
		})
		require.ErrorIs(t, err, httpx.ErrForbidden, "role %s", role)
	}
}

func TestSubscriptionActiveAtBoundary(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sub := Subscription{Status: SubscriptionActive, PeriodEnd: &end}

	require.True(t, sub.ActiveAt(end.Add(-time.Second)))
	require.False(t, sub.ActiveAt(end))
	require.False(t, sub.ActiveAt(end.Add(time.Second)))
}
