package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

// Decimal inputs travel as strings and are converted here, at the boundary.
// The pricing engine only ever sees already-validated decimals.

type CreatePricelistRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Currency string `json:"currency" validate:"required,len=3"`
}

type UpdatePricelistRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Currency *string `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type ItemPayload struct {
	SKU           string  `json:"sku" validate:"required,max=64"`
	Name          string  `json:"name" validate:"required,max=200"`
	Unit          string  `json:"unit" validate:"required,max=20"`
	LooseBuyPrice string  `json:"loose_buy_price" validate:"required"`
	PackBuyPrice  *string `json:"pack_buy_price,omitempty"`
	PackSize      *string `json:"pack_size,omitempty"`
	SellPrice     string  `json:"sell_price" validate:"required"`
}

type ListItemsRequest struct {
	Search string
	Limit  int
	Offset int
}

// toItem validates and converts the payload into a domain item.
func (p ItemPayload) toItem(orgID, pricelistID int64) (Item, error) {
	item := Item{
		OrganizationID: orgID,
		PricelistID:    pricelistID,
		SKU:            p.SKU,
		Name:           p.Name,
		Unit:           p.Unit,
	}

	var err error
	if item.LooseBuyPrice, err = parsePrice("loose_buy_price", p.LooseBuyPrice); err != nil {
		return Item{}, err
	}
	if item.SellPrice, err = parsePrice("sell_price", p.SellPrice); err != nil {
		return Item{}, err
	}
	if item.PackBuyPrice, err = parseOptionalPrice("pack_buy_price", p.PackBuyPrice); err != nil {
		return Item{}, err
	}
	if item.PackSize, err = parseOptionalQuantity("pack_size", p.PackSize); err != nil {
		return Item{}, err
	}
	return item, nil
}

func parsePrice(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is not a valid decimal", httpx.ErrValidation, field)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s must not be negative", httpx.ErrValidation, field)
	}
	return d, nil
}

func parseOptionalPrice(field string, raw *string) (decimal.NullDecimal, error) {
	if raw == nil || *raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parsePrice(field, *raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func parseOptionalQuantity(field string, raw *string) (decimal.NullDecimal, error) {
	if raw == nil || *raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s is not a valid decimal", httpx.ErrValidation, field)
	}
	if !d.IsPositive() {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s must be greater than zero", httpx.ErrValidation, field)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
