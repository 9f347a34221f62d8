package quotes

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

type CreateQuoteRequest struct {
	CustomerID int64  `json:"customer_id" validate:"required,gt=0"`
	Reference  string `json:"reference" validate:"max=120"`
	Notes      string `json:"notes" validate:"max=2000"`
}

type UpdateQuoteRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Reference  *string `json:"reference,omitempty" validate:"omitempty,max=120"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// LinePayload carries one quote line. SellPrice overrides the item's list
// sell price when set; quantity and prices travel as strings like every
// decimal at the HTTP boundary.
type LinePayload struct {
	ItemID    int64   `json:"item_id" validate:"required,gt=0"`
	Quantity  string  `json:"quantity" validate:"required"`
	SellPrice *string `json:"sell_price,omitempty"`
}

type ListRequest struct {
	CustomerID int64
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

func parseSellPrice(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: sell_price is not a valid decimal", httpx.ErrValidation)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: sell_price must not be negative", httpx.ErrValidation)
	}
	return d, nil
}
