// Package pricing implements the buy-price selection and margin arithmetic
// shared by quotes and purchase orders. All functions are pure and operate on
// fixed-point decimals; callers validate raw input before anything reaches
// this package.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Attributes carries the pricing fields of a pricelist item.
//
// LooseBuyPrice is always defined. Pack pricing only participates when both
// PackBuyPrice and PackSize are present; a lone pack field is ignored.
type Attributes struct {
	LooseBuyPrice decimal.Decimal
	PackBuyPrice  decimal.NullDecimal
	PackSize      decimal.NullDecimal
}

// LineAmounts is the per-line input to a document re-sum.
type LineAmounts struct {
	LineTotal decimal.Decimal
	Margin    decimal.Decimal
}

// DocumentTotals is the aggregate derived from a document's current lines.
type DocumentTotals struct {
	TotalAmount      decimal.Decimal
	TotalMargin      decimal.Decimal
	MarginPercentage decimal.Decimal
}

// UnitBuyPrice selects the applicable unit buy price for the requested
// quantity. The pack price applies once quantity meets the pack size; the
// boundary is inclusive, so quantity == packSize buys at the pack price.
func UnitBuyPrice(quantity decimal.Decimal, attrs Attributes) decimal.Decimal {
	if !attrs.PackBuyPrice.Valid || !attrs.PackSize.Valid {
		return attrs.LooseBuyPrice
	}
	if quantity.GreaterThanOrEqual(attrs.PackSize.Decimal) {
		return attrs.PackBuyPrice.Decimal
	}
	return attrs.LooseBuyPrice
}

// LineTotal computes quantity x unitPrice. No rounding: display formatting is
// a presentation concern.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// Margin computes (sellPrice - buyPrice) x quantity. Selling below cost is
// permitted, so the result may be negative.
func Margin(sellPrice, buyPrice, quantity decimal.Decimal) decimal.Decimal {
	return sellPrice.Sub(buyPrice).Mul(quantity)
}

// SumDocument re-sums the full current line set of a document. It is always a
// complete re-sum rather than an incremental update, which keeps the
// aggregate consistent regardless of the order of prior add/edit/delete
// operations. MarginPercentage is zero when TotalAmount is zero.
func SumDocument(lines []LineAmounts) DocumentTotals {
	var totals DocumentTotals
	for _, line := range lines {
		totals.TotalAmount = totals.TotalAmount.Add(line.LineTotal)
		totals.TotalMargin = totals.TotalMargin.Add(line.Margin)
	}
	if !totals.TotalAmount.IsZero() {
		totals.MarginPercentage = totals.TotalMargin.Div(totals.TotalAmount).Mul(hundred)
	}
	return totals
}
