package customers

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

func (s *Service) List(ctx context.Context, orgID int64, req ListRequest) ([]Customer, int, error) {
	return s.repo.List(ctx, orgID, req)
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (*Customer, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Create(ctx context.Context, orgID int64, payload CustomerPayload) (*Customer, error) {
	id, err := s.repo.Create(ctx, Customer{
		OrganizationID: orgID,
		Code:           payload.Code,
		Name:           payload.Name,
		ContactName:    payload.ContactName,
		Email:          payload.Email,
		Phone:          payload.Phone,
		Address:        payload.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Update(ctx context.Context, orgID, id int64, payload CustomerPayload) (*Customer, error) {
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
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	return s.repo.Delete(ctx, orgID, id)
}
