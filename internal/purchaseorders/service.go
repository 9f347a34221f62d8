package purchaseorders

import (
	"context"
	"fmt"
	"time"

	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/pricing"
	"github.com/tradewind-erp/tradewind/internal/suppliers"
)

// ItemSource resolves pricelist items for line pricing.
type ItemSource interface {
	GetItem(ctx context.Context, orgID, id int64) (*catalog.Item, error)
}

type Service struct {
	repo         Repository
	supplierRepo suppliers.Repository
	items        ItemSource
	now          func() time.Time
}

func NewService(repo Repository, supplierRepo suppliers.Repository, items ItemSource) *Service {
	return &Service{
		repo:         repo,
		supplierRepo: supplierRepo,
		items:        items,
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, orgID, userID int64, req CreateOrderRequest) (*PurchaseOrder, error) {
	if _, err := s.supplierRepo.Get(ctx, orgID, req.SupplierID); err != nil {
		return nil, fmt.Errorf("verify supplier: %w", err)
	}

	docNumber, err := s.repo.GenerateNumber(ctx, orgID, s.now())
	if err != nil {
		return nil, fmt.Errorf("generate doc number: %w", err)
	}

	id, err := s.repo.Create(ctx, PurchaseOrder{
		OrganizationID: orgID,
		DocNumber:      docNumber,
		SupplierID:     req.SupplierID,
		Reference:      req.Reference,
		Status:         StatusDraft,
		Notes:          req.Notes,
		CreatedBy:      userID,
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (*PurchaseOrder, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) List(ctx context.Context, orgID int64, req ListRequest) ([]PurchaseOrder, int, error) {
	return s.repo.List(ctx, orgID, req)
}

func (s *Service) Update(ctx context.Context, orgID, id int64, req UpdateOrderRequest) (*PurchaseOrder, error) {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft purchase orders can be edited", httpx.ErrValidation)
	}
	if req.SupplierID != nil {
		if _, err := s.supplierRepo.Get(ctx, orgID, *req.SupplierID); err != nil {
			return nil, fmt.Errorf("verify supplier: %w", err)
		}
		existing.SupplierID = *req.SupplierID
	}
	if req.Reference != nil {
		existing.Reference = *req.Reference
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}
	if err := s.repo.UpdateHeader(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update purchase order: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) UpdateStatus(ctx context.Context, orgID, id int64, next Status) (*PurchaseOrder, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, next)
	}
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !existing.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move purchase order from %s to %s", httpx.ErrValidation, existing.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, orgID, id, next); err != nil {
		return nil, fmt.Errorf("update purchase order status: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if existing.Status != StatusDraft {
		return fmt.Errorf("%w: only draft purchase orders can be deleted", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, orgID, id)
}

// AddLine appends a line and re-sums the order total in one transaction. The
// unit price is whichever buy price the engine selects for the quantity.
func (s *Service) AddLine(ctx context.Context, orgID, orderID int64, payload LinePayload) (*PurchaseOrder, error) {
	order, err := s.repo.Get(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft purchase orders can be edited", httpx.ErrValidation)
	}

	line, err := s.buildLine(ctx, orgID, orderID, payload)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.InsertLine(ctx, line); err != nil {
			return fmt.Errorf("insert line: %w", err)
		}
		return resum(ctx, repo, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, orderID)
}

// UpdateLine replaces a line's quantity. The unit price is re-selected
// because a quantity change can cross the pack boundary.
func (s *Service) UpdateLine(ctx context.Context, orgID, orderID, lineID int64, payload LinePayload) (*PurchaseOrder, error) {
	order, err := s.repo.Get(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft purchase orders can be edited", httpx.ErrValidation)
	}
	existing, err := s.repo.GetLine(ctx, orderID, lineID)
	if err != nil {
		return nil, err
	}

	line, err := s.buildLine(ctx, orgID, orderID, payload)
	if err != nil {
		return nil, err
	}
	line.ID = existing.ID

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateLine(ctx, line); err != nil {
			return fmt.Errorf("update line: %w", err)
		}
		return resum(ctx, repo, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, orderID)
}

func (s *Service) DeleteLine(ctx context.Context, orgID, orderID, lineID int64) (*PurchaseOrder, error) {
	order, err := s.repo.Get(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft purchase orders can be edited", httpx.ErrValidation)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteLine(ctx, orderID, lineID); err != nil {
			return fmt.Errorf("delete line: %w", err)
		}
		return resum(ctx, repo, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, orderID)
}

func (s *Service) buildLine(ctx context.Context, orgID, orderID int64, payload LinePayload) (Line, error) {
	quantity, err := parseQuantity(payload.Quantity)
	if err != nil {
		return Line{}, err
	}

	item, err := s.items.GetItem(ctx, orgID, payload.ItemID)
	if err != nil {
		return Line{}, fmt.Errorf("resolve item: %w", err)
	}

	unitPrice := pricing.UnitBuyPrice(quantity, item.PricingAttributes())
	return Line{
		PurchaseOrderID: orderID,
		ItemID:          item.ID,
		SKU:             item.SKU,
		Name:            item.Name,
		Unit:            item.Unit,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		LineTotal:       pricing.LineTotal(quantity, unitPrice),
	}, nil
}

// resum recomputes the order total from the full current line set.
func resum(ctx context.Context, repo Repository, orderID int64) error {
	lines, err := repo.GetLines(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load lines: %w", err)
	}
	amounts := make([]pricing.LineAmounts, len(lines))
	for i, line := range lines {
		amounts[i] = pricing.LineAmounts{LineTotal: line.LineTotal}
	}
	totals := pricing.SumDocument(amounts)
	if err := repo.UpdateTotal(ctx, orderID, totals.TotalAmount); err != nil {
		return fmt.Errorf("store total: %w", err)
	}
	return nil
}
