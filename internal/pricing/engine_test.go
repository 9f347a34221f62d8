package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func packAttrs() Attributes {
	return Attributes{
		LooseBuyPrice: dec("76.00"),
		PackBuyPrice:  nullDec("70.00"),
		PackSize:      nullDec("60"),
	}
}

func TestUnitBuyPriceBelowPackSize(t *testing.T) {
	price := UnitBuyPrice(dec("50"), packAttrs())
	require.True(t, price.Equal(dec("76.00")), "got %s", price)

	total := LineTotal(dec("50"), price)
	require.True(t, total.Equal(dec("3800.00")), "got %s", total)
}

func TestUnitBuyPriceAtPackBoundary(t *testing.T) {
	// The boundary is inclusive: exactly one pack buys at the pack price.
	price := UnitBuyPrice(dec("60"), packAttrs())
	require.True(t, price.Equal(dec("70.00")), "got %s", price)

	total := LineTotal(dec("60"), price)
	require.True(t, total.Equal(dec("4200.00")), "got %s", total)
}

func TestUnitBuyPriceAbovePackSize(t *testing.T) {
	price := UnitBuyPrice(dec("64"), packAttrs())
	require.True(t, price.Equal(dec("70.00")), "got %s", price)

	total := LineTotal(dec("64"), price)
	require.True(t, total.Equal(dec("4480.00")), "got %s", total)
}

func TestUnitBuyPriceIgnoresIncompletePackPricing(t *testing.T) {
	cases := map[string]Attributes{
		"no pack fields": {LooseBuyPrice: dec("76.00")},
		"missing size":   {LooseBuyPrice: dec("76.00"), PackBuyPrice: nullDec("70.00")},
		"missing price":  {LooseBuyPrice: dec("76.00"), PackSize: nullDec("60")},
	}
	for name, attrs := range cases {
		t.Run(name, func(t *testing.T) {
			for _, qty := range []string{"1", "60", "10000"} {
				price := UnitBuyPrice(dec(qty), attrs)
				require.True(t, price.Equal(dec("76.00")), "qty %s got %s", qty, price)
			}
		})
	}
}

func TestMarginMayBeNegative(t *testing.T) {
	margin := Margin(dec("10.00"), dec("12.00"), dec("5"))
	require.True(t, margin.Equal(dec("-10.00")), "got %s", margin)
}

func TestSumDocumentQuoteScenario(t *testing.T) {
	qty := dec("10")
	sell := dec("18.00")
	buy := dec("12.00")

	line := LineAmounts{
		LineTotal: LineTotal(qty, sell),
		Margin:    Margin(sell, buy, qty),
	}
	require.True(t, line.LineTotal.Equal(dec("180.00")), "got %s", line.LineTotal)
	require.True(t, line.Margin.Equal(dec("60.00")), "got %s", line.Margin)

	totals := SumDocument([]LineAmounts{line})
	require.True(t, totals.TotalAmount.Equal(dec("180.00")), "got %s", totals.TotalAmount)
	require.True(t, totals.TotalMargin.Equal(dec("60.00")), "got %s", totals.TotalMargin)

	pct, _ := totals.MarginPercentage.Round(2).Float64()
	require.InDelta(t, 33.33, pct, 0.001)
}

func TestSumDocumentIsIdempotent(t *testing.T) {
	lines := []LineAmounts{
		{LineTotal: dec("180.00"), Margin: dec("60.00")},
		{LineTotal: dec("4480.00"), Margin: dec("-20.00")},
	}
	first := SumDocument(lines)
	second := SumDocument(lines)
	require.True(t, first.TotalAmount.Equal(second.TotalAmount))
	require.True(t, first.TotalMargin.Equal(second.TotalMargin))
	require.True(t, first.MarginPercentage.Equal(second.MarginPercentage))
}

func TestSumDocumentEmptyDocument(t *testing.T) {
	totals := SumDocument(nil)
	require.True(t, totals.TotalAmount.IsZero())
	require.True(t, totals.TotalMargin.IsZero())
	// Never NaN or Inf: the percentage is defined as zero for an empty total.
	require.True(t, totals.MarginPercentage.IsZero())
}

func TestSumDocumentZeroTotalWithLines(t *testing.T) {
	totals := SumDocument([]LineAmounts{
		{LineTotal: dec("0"), Margin: dec("0")},
	})
	require.True(t, totals.MarginPercentage.IsZero())
}
