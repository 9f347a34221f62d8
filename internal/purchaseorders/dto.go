package purchaseorders

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

type CreateOrderRequest struct {
	SupplierID int64  `json:"supplier_id" validate:"required,gt=0"`
	Reference  string `json:"reference" validate:"max=120"`
	Notes      string `json:"notes" validate:"max=2000"`
}

type UpdateOrderRequest struct {
	SupplierID *int64  `json:"supplier_id,omitempty" validate:"omitempty,gt=0"`
	Reference  *string `json:"reference,omitempty" validate:"omitempty,max=120"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// LinePayload carries one order line. The unit price is never supplied by the
// caller; the engine derives it from the item's pricing attributes.
type LinePayload struct {
	ItemID   int64  `json:"item_id" validate:"required,gt=0"`
	Quantity string `json:"quantity" validate:"required"`
}

type ListRequest struct {
	SupplierID int64
	Status     Status
	Limit      int
	Offset     int
}

func parseQuantity(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: quantity is not a valid decimal", httpx.ErrValidation)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: quantity must be greater than zero", httpx.ErrValidation)
	}
	return d, nil
}
