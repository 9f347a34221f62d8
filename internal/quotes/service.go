package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/customers"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/pricing"
)

// ItemSource resolves pricelist items for line pricing.
type ItemSource interface {
	GetItem(ctx context.Context, orgID, id int64) (*catalog.Item, error)
}

type Service struct {
	repo         Repository
	customerRepo customers.Repository
	items        ItemSource
	now          func() time.Time
}

func NewService(repo Repository, customerRepo customers.Repository, items ItemSource) *Service {
	return &Service{
		repo:         repo,
		customerRepo: customerRepo,
		items:        items,
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, orgID, userID int64, req CreateQuoteRequest) (*Quote, error) {
	if _, err := s.customerRepo.Get(ctx, orgID, req.CustomerID); err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	docNumber, err := s.repo.GenerateNumber(ctx, orgID, s.now())
	if err != nil {
		return nil, fmt.Errorf("generate doc number: %w", err)
	}

	id, err := s.repo.Create(ctx, Quote{
		OrganizationID: orgID,
		DocNumber:      docNumber,
		CustomerID:     req.CustomerID,
		Reference:      req.Reference,
		Status:         StatusDraft,
		Notes:          req.Notes,
		CreatedBy:      userID,
	})
	if err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (*Quote, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) List(ctx context.Context, orgID int64, req ListRequest) ([]Quote, int, error) {
	return s.repo.List(ctx, orgID, req)
}

func (s *Service) Update(ctx context.Context, orgID, id int64, req UpdateQuoteRequest) (*Quote, error) {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft quotes can be edited", httpx.ErrValidation)
	}
	if req.CustomerID != nil {
		if _, err := s.customerRepo.Get(ctx, orgID, *req.CustomerID); err != nil {
			return nil, fmt.Errorf("verify customer: %w", err)
		}
		existing.CustomerID = *req.CustomerID
	}
	if req.Reference != nil {
		existing.Reference = *req.Reference
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}
	if err := s.repo.UpdateHeader(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update quote: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) UpdateStatus(ctx context.Context, orgID, id int64, next Status) (*Quote, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, next)
	}
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !existing.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move quote from %s to %s", httpx.ErrValidation, existing.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, orgID, id, next); err != nil {
		return nil, fmt.Errorf("update quote status: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if existing.Status != StatusDraft {
		return fmt.Errorf("%w: only draft quotes can be deleted", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, orgID, id)
}

// AddLine appends a line and re-sums the quote aggregate in one transaction.
// The buy price is selected by the pricing engine from the item's current
// pricing attributes and recorded on the line.
func (s *Service) AddLine(ctx context.Context, orgID, quoteID int64, payload LinePayload) (*Quote, error) {
	quote, err := s.repo.Get(ctx, orgID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft quotes can be edited", httpx.ErrValidation)
	}

	line, err := s.buildLine(ctx, orgID, quoteID, payload)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.InsertLine(ctx, line); err != nil {
			return fmt.Errorf("insert line: %w", err)
		}
		return resum(ctx, repo, quoteID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, quoteID)
}

// UpdateLine replaces a line's quantity and sell price. The buy price is
// re-selected because a quantity change can cross the pack boundary.
func (s *Service) UpdateLine(ctx context.Context, orgID, quoteID, lineID int64, payload LinePayload) (*Quote, error) {
	quote, err := s.repo.Get(ctx, orgID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft quotes can be edited", httpx.ErrValidation)
	}
	existing, err := s.repo.GetLine(ctx, quoteID, lineID)
	if err != nil {
		return nil, err
	}

	line, err := s.buildLine(ctx, orgID, quoteID, payload)
	if err != nil {
		return nil, err
	}
	line.ID = existing.ID

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateLine(ctx, line); err != nil {
			return fmt.Errorf("update line: %w", err)
		}
		return resum(ctx, repo, quoteID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, quoteID)
}

func (s *Service) DeleteLine(ctx context.Context, orgID, quoteID, lineID int64) (*Quote, error) {
	quote, err := s.repo.Get(ctx, orgID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft quotes can be edited", httpx.ErrValidation)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteLine(ctx, quoteID, lineID); err != nil {
			return fmt.Errorf("delete line: %w", err)
		}
		return resum(ctx, repo, quoteID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, quoteID)
}

func (s *Service) buildLine(ctx context.Context, orgID, quoteID int64, payload LinePayload) (Line, error) {
	quantity, err := parseQuantity(payload.Quantity)
	if err != nil {
		return Line{}, err
	}

	item, err := s.items.GetItem(ctx, orgID, payload.ItemID)
	if err != nil {
		return Line{}, fmt.Errorf("resolve item: %w", err)
	}

	sellPrice := item.SellPrice
	if payload.SellPrice != nil {
		if sellPrice, err = parseSellPrice(*payload.SellPrice); err != nil {
			return Line{}, err
		}
	}

	buyPrice := pricing.UnitBuyPrice(quantity, item.PricingAttributes())
	return Line{
		QuoteID:   quoteID,
		ItemID:    item.ID,
		SKU:       item.SKU,
		Name:      item.Name,
		Unit:      item.Unit,
		Quantity:  quantity,
		SellPrice: sellPrice,
		BuyPrice:  buyPrice,
		LineTotal: pricing.LineTotal(quantity, sellPrice),
		Margin:    pricing.Margin(sellPrice, buyPrice, quantity),
	}, nil
}

// resum recomputes the aggregate from the full current line set. Always a
// complete re-sum, never an incremental delta.
func resum(ctx context.Context, repo Repository, quoteID int64) error {
	lines, err := repo.GetLines(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("load lines: %w", err)
	}
	amounts := make([]pricing.LineAmounts, len(lines))
	for i, line := range lines {
		amounts[i] = pricing.LineAmounts{LineTotal: line.LineTotal, Margin: line.Margin}
	}
	if err := repo.UpdateTotals(ctx, quoteID, pricing.SumDocument(amounts)); err != nil {
		return fmt.Errorf("store totals: %w", err)
	}
	return nil
}
