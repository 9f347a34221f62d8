package catalog

import (
	"context"
	"fmt"
	"io"
)

// Service wraps catalog business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListPricelists(ctx context.Context, orgID int64) ([]Pricelist, error) {
	return s.repo.ListPricelists(ctx, orgID)
}

func (s *Service) GetPricelist(ctx context.Context, orgID, id int64) (*Pricelist, error) {
	return s.repo.GetPricelist(ctx, orgID, id)
}

func (s *Service) CreatePricelist(ctx context.Context, orgID int64, req CreatePricelistRequest) (*Pricelist, error) {
	id, err := s.repo.CreatePricelist(ctx, Pricelist{
		OrganizationID: orgID,
		Name:           req.Name,
		Currency:       req.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("create pricelist: %w", err)
	}
	return s.repo.GetPricelist(ctx, orgID, id)
}

func (s *Service) UpdatePricelist(ctx context.Context, orgID, id int64, req UpdatePricelistRequest) (*Pricelist, error) {
	existing, err := s.repo.GetPricelist(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Currency != nil {
		existing.Currency = *req.Currency
	}
	if err := s.repo.UpdatePricelist(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update pricelist: %w", err)
	}
	return s.repo.GetPricelist(ctx, orgID, id)
}

func (s *Service) DeletePricelist(ctx context.Context, orgID, id int64) error {
	return s.repo.DeletePricelist(ctx, orgID, id)
}

func (s *Service) ListItems(ctx context.Context, orgID, pricelistID int64, req ListItemsRequest) ([]Item, int, error) {
	if _, err := s.repo.GetPricelist(ctx, orgID, pricelistID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListItems(ctx, orgID, pricelistID, req)
}

func (s *Service) GetItem(ctx context.Context, orgID, id int64) (*Item, error) {
	return s.repo.GetItem(ctx, orgID, id)
}

func (s *Service) CreateItem(ctx context.Context, orgID, pricelistID int64, payload ItemPayload) (*Item, error) {
	if _, err := s.repo.GetPricelist(ctx, orgID, pricelistID); err != nil {
		return nil, fmt.Errorf("verify pricelist: %w", err)
	}
	item, err := payload.toItem(orgID, pricelistID)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return s.repo.GetItem(ctx, orgID, id)
}

func (s *Service) UpdateItem(ctx context.Context, orgID, id int64, payload ItemPayload) (*Item, error) {
	existing, err := s.repo.GetItem(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	item, err := payload.toItem(orgID, existing.PricelistID)
	if err != nil {
		return nil, err
	}
	item.ID = id
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.repo.GetItem(ctx, orgID, id)
}

func (s *Service) DeleteItem(ctx context.Context, orgID, id int64) error {
	return s.repo.DeleteItem(ctx, orgID, id)
}

// ImportCSV parses and upserts a pricelist CSV. Rows are validated up front;
// a single bad row rejects the whole file so a partial import never lands.
func (s *Service) ImportCSV(ctx context.Context, orgID, pricelistID int64, csvData io.Reader) (int, error) {
	if _, err := s.repo.GetPricelist(ctx, orgID, pricelistID); err != nil {
		return 0, fmt.Errorf("verify pricelist: %w", err)
	}
	items, err := parseItemsCSV(csvData, orgID, pricelistID)
	if err != nil {
		return 0, err
	}
	return s.repo.InsertItems(ctx, items)
}
