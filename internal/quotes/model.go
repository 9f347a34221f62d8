// Package quotes manages sales quotes: a header per customer plus line items
// whose margin is derived from the buy price the pricing engine selects.
package quotes

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// CanTransitionTo enforces the quote lifecycle: draft -> sent -> accepted or
// declined. No transition leaves a terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusSent
	case StatusSent:
		return next == StatusAccepted || next == StatusDeclined
	}
	return false
}

// Quote is a sales quote header. Aggregate fields are recomputed from the
// full line set inside the same transaction as every line mutation.
type Quote struct {
	ID               int64           `json:"id"`
	OrganizationID   int64           `json:"organization_id"`
	DocNumber        string          `json:"doc_number"`
	CustomerID       int64           `json:"customer_id"`
	Reference        string          `json:"reference"`
	Status           Status          `json:"status"`
	Notes            string          `json:"notes"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalMargin      decimal.Decimal `json:"total_margin"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
	CreatedBy        int64           `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Lines            []Line          `json:"lines,omitempty"`
}

// Line is a quote line item. BuyPrice is the engine-selected unit buy price,
// recorded at the time the line was added or last updated; it never renders
// on customer-facing documents but drives margin tracking.
type Line struct {
	ID        int64           `json:"id"`
	QuoteID   int64           `json:"quote_id"`
	ItemID    int64           `json:"item_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
	SellPrice decimal.Decimal `json:"sell_price"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Margin    decimal.Decimal `json:"margin"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
