// Package purchaseorders manages purchase orders issued to suppliers. The
// unit price of every line is the buy price the pricing engine selects for
// the ordered quantity; purchase documents carry no margin fields.
package purchaseorders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces draft -> sent -> received or cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusSent || next == StatusCancelled
	case StatusSent:
		return next == StatusReceived || next == StatusCancelled
	}
	return false
}

// PurchaseOrder is a purchase document header.
type PurchaseOrder struct {
	ID             int64           `json:"id"`
	OrganizationID int64           `json:"organization_id"`
	DocNumber      string          `json:"doc_number"`
	SupplierID     int64           `json:"supplier_id"`
	Reference      string          `json:"reference"`
	Status         Status          `json:"status"`
	Notes          string          `json:"notes"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CreatedBy      int64           `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Lines          []Line          `json:"lines,omitempty"`
}

// Line is a purchase order line. UnitPrice is the engine-selected buy price
// for the ordered quantity, pack or loose.
type Line struct {
	ID              int64           `json:"id"`
	PurchaseOrderID int64           `json:"purchase_order_id"`
	ItemID          int64           `json:"item_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
