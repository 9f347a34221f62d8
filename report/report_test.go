package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-erp/tradewind/internal/customers"
	"github.com/tradewind-erp/tradewind/internal/purchaseorders"
	"github.com/tradewind-erp/tradewind/internal/quotes"
	"github.com/tradewind-erp/tradewind/internal/suppliers"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleQuote() *quotes.Quote {
	return &quotes.Quote{
		ID: 1, OrganizationID: 1, DocNumber: "QT-2608-0001",
		CustomerID: 10, Reference: "ACME-77", Status: quotes.StatusSent,
		TotalAmount:      dec("11000.00"),
		TotalMargin:      dec("3000.00"),
		MarginPercentage: dec("27.27"),
		CreatedAt:        time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC),
		Lines: []quotes.Line{
			{
				ID: 1, QuoteID: 1, ItemID: 100, SKU: "WID-1", Name: "Widget", Unit: "pcs",
				Quantity: dec("50"), SellPrice: dec("100.00"), BuyPrice: dec("76.00"),
				LineTotal: dec("5000.00"), Margin: dec("1200.00"),
			},
			{
				ID: 2, QuoteID: 1, ItemID: 100, SKU: "WID-1", Name: "Widget", Unit: "pcs",
				Quantity: dec("60"), SellPrice: dec("100.00"), BuyPrice: dec("70.00"),
				LineTotal: dec("6000.00"), Margin: dec("1800.00"),
			},
		},
	}
}

func TestQuoteDocumentNeverCarriesMarginData(t *testing.T) {
	quote := sampleQuote()
	customer := &customers.Customer{ID: 10, Name: "Acme Wholesale", ContactName: "J. Doe", Address: "1 Dock Rd", Email: "orders@acme.test"}

	doc := NewQuoteDocument(quote, customer, "Tradewind Distribution", "EUR")
	html, err := BuildQuoteHTML(doc)
	require.NoError(t, err)

	require.Contains(t, html, "QT-2608-0001")
	require.Contains(t, html, "Acme Wholesale")
	require.Contains(t, html, "11,000.00")
	require.Contains(t, html, "100.00", "unit sell price is shown")

	require.NotContains(t, html, "76.00", "loose buy price must not leak")
	require.NotContains(t, html, "70.00", "pack buy price must not leak")
	require.NotContains(t, html, "1,200.00", "line margin must not leak")
	require.NotContains(t, html, "3,000.00", "total margin must not leak")
	require.NotContains(t, html, "27.27", "margin percentage must not leak")
	require.NotContains(t, strings.ToLower(html), "margin")
}

func TestPurchaseOrderDocumentNeverCarriesSellData(t *testing.T) {
	order := &purchaseorders.PurchaseOrder{
		ID: 2, OrganizationID: 1, DocNumber: "PO-2608-0004",
		SupplierID: 20, Status: purchaseorders.StatusSent,
		TotalAmount: dec("4200.00"),
		CreatedAt:   time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC),
		Lines: []purchaseorders.Line{
			{
				ID: 1, PurchaseOrderID: 2, ItemID: 100, SKU: "WID-1", Name: "Widget", Unit: "pcs",
				Quantity: dec("60"), UnitPrice: dec("70.00"), LineTotal: dec("4200.00"),
			},
		},
	}
	supplier := &suppliers.Supplier{ID: 20, Name: "Northern Goods", Address: "9 Quay St", Email: "sales@northern.test"}

	doc := NewPurchaseOrderDocument(order, supplier, "Tradewind Distribution", "EUR")
	html, err := BuildPurchaseOrderHTML(doc)
	require.NoError(t, err)

	require.Contains(t, html, "PO-2608-0004")
	require.Contains(t, html, "Northern Goods")
	require.Contains(t, html, "70.00", "the buy price is the supplier-facing unit price")
	require.Contains(t, html, "4,200.00")

	require.NotContains(t, html, "100.00", "sell price must not appear on a purchase order")
	require.NotContains(t, strings.ToLower(html), "margin")
}

func TestQuoteDocumentEscapesCustomerInput(t *testing.T) {
	quote := sampleQuote()
	quote.Notes = `<script>alert("x")</script>`
	customer := &customers.Customer{ID: 10, Name: "Acme <Wholesale>"}

	html, err := BuildQuoteHTML(NewQuoteDocument(quote, customer, "Tradewind", "EUR"))
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "&lt;script&gt;")
}
