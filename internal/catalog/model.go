// Package catalog manages pricelists and their items, the source of pricing
// attributes consumed by quotes and purchase orders.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradewind-erp/tradewind/internal/pricing"
)

// Pricelist groups items under one currency for an organization.
type Pricelist struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Item is a sellable product with its buy pricing attributes. LooseBuyPrice
// is always present; pack pricing participates only when both pack fields are
// set.
type Item struct {
	ID             int64               `json:"id"`
	OrganizationID int64               `json:"organization_id"`
	PricelistID    int64               `json:"pricelist_id"`
	SKU            string              `json:"sku"`
	Name           string              `json:"name"`
	Unit           string              `json:"unit"`
	LooseBuyPrice  decimal.Decimal     `json:"loose_buy_price"`
	PackBuyPrice   decimal.NullDecimal `json:"pack_buy_price"`
	PackSize       decimal.NullDecimal `json:"pack_size"`
	SellPrice      decimal.Decimal     `json:"sell_price"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// PricingAttributes maps the item to the pricing engine's input.
func (i Item) PricingAttributes() pricing.Attributes {
	return pricing.Attributes{
		LooseBuyPrice: i.LooseBuyPrice,
		PackBuyPrice:  i.PackBuyPrice,
		PackSize:      i.PackSize,
	}
}
