package tenancy

import (
	"context"
	"fmt"
	"time"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

// Repository defines the lookups the gate needs.
type Repository interface {
	GetPrincipal(ctx context.Context, userID int64) (*Principal, error)
	GetSubscription(ctx context.Context, orgID int64) (*Subscription, error)
}

// Service evaluates authorization decisions. State machine per request:
// Unauthenticated -> Authenticated(Principal) -> Authorized(Principal, orgID).
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Principal loads the principal backing a session user ID.
func (s *Service) Principal(ctx context.Context, userID int64) (*Principal, error) {
	return s.repo.GetPrincipal(ctx, userID)
}

// Authorize checks the principal's role against the required level. A
// super_admin may always act.
func (s *Service) Authorize(p Principal, required Role) error {
	if p.IsSuperAdmin() {
		return nil
	}
	if !p.Role.AtLeast(required) {
		return fmt.Errorf("%w: requires role %s", httpx.ErrForbidden, required)
	}
	return nil
}

// ResolveTenancy returns the organization the principal may operate in. It
// fails when the principal has no organization or the organization's
// subscription has lapsed. Super admins skip both checks and resolve to no
// particular organization.
//
// This runs on every tenant-scoped operation, not just at login: a
// subscription can lapse mid-session.
func (s *Service) ResolveTenancy(ctx context.Context, p Principal) (int64, error) {
	if p.OrganizationID == nil {
		return 0, fmt.Errorf("%w: no organization", httpx.ErrForbidden)
	}
	sub, err := s.repo.GetSubscription(ctx, *p.OrganizationID)
	if err != nil {
		return 0, fmt.Errorf("load subscription: %w", err)
	}
	if !sub.ActiveAt(s.now().UTC()) {
		return 0, fmt.Errorf("%w: subscription inactive", httpx.ErrForbidden)
	}
	return *p.OrganizationID, nil
}
