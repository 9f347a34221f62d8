package orgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]Organization, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (*Organization, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, payload OrganizationPayload) (*Organization, error) {
	id, err := s.repo.Create(ctx, Organization{Name: payload.Name, Slug: payload.Slug})
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, payload OrganizationPayload) (*Organization, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = payload.Name
	existing.Slug = payload.Slug
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetSubscription(ctx context.Context, orgID int64) (*Subscription, error) {
	return s.repo.GetSubscription(ctx, orgID)
}

func (s *Service) SetSubscription(ctx context.Context, orgID int64, payload SubscriptionPayload) (*Subscription, error) {
	if _, err := s.repo.Get(ctx, orgID); err != nil {
		return nil, err
	}
	err := s.repo.UpsertSubscription(ctx, Subscription{
		OrganizationID: orgID,
		Status:         payload.Status,
		PeriodEnd:      payload.PeriodEnd,
		Indefinite:     payload.Indefinite,
	})
	if err != nil {
		return nil, fmt.Errorf("store subscription: %w", err)
	}
	return s.repo.GetSubscription(ctx, orgID)
}

// AccountView is what the account/billing screen renders for the caller.
type AccountView struct {
	Organization *Organization `json:"organization,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

// Account resolves the caller's own organization and subscription. It stays
// reachable when the subscription has lapsed so owners can see why they are
// locked out.
func (s *Service) Account(ctx context.Context, principal *tenancy.Principal) (*AccountView, error) {
	view := &AccountView{}
	if principal == nil || principal.OrganizationID == nil {
		return view, nil
	}
	org, err := s.repo.Get(ctx, *principal.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	view.Organization = org

	sub, err := s.repo.GetSubscription(ctx, org.ID)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	view.Subscription = sub
	return view, nil
}
