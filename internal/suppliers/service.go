package suppliers

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, orgID int64, req ListRequest) ([]Supplier, int, error) {
	return s.repo.List(ctx, orgID, req)
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (*Supplier, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Create(ctx context.Context, orgID int64, payload SupplierPayload) (*Supplier, error) {
	id, err := s.repo.Create(ctx, Supplier{
		OrganizationID: orgID,
		Code:           payload.Code,
		Name:           payload.Name,
		ContactName:    payload.ContactName,
		Email:          payload.Email,
		Phone:          payload.Phone,
		Address:        payload.Address,
		PaymentTerms:   payload.PaymentTerms,
	})
	if err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Update(ctx context.Context, orgID, id int64, payload SupplierPayload) (*Supplier, error) {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	existing.Code = payload.Code
	existing.Name = payload.Name
	existing.ContactName = payload.ContactName
	existing.Email = payload.Email
	existing.Phone = payload.Phone
	existing.Address = payload.Address
	existing.PaymentTerms = payload.PaymentTerms
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	return s.repo.Delete(ctx, orgID, id)
}
