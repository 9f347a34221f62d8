package report

import (
	"bytes"
	"html/template"
	"time"

	"github.com/tradewind-erp/tradewind/internal/purchaseorders"
	"github.com/tradewind-erp/tradewind/internal/suppliers"
)

// PurchaseOrderDocument is the supplier-facing view of a purchase order. It
// has no sell-price or margin fields by construction.
type PurchaseOrderDocument struct {
	DocNumber    string
	Date         string
	Reference    string
	Organization string
	Currency     string
	Supplier     SupplierParty
	Lines        []PurchaseOrderDocumentLine
	TotalAmount  string
	Notes        string
}

// SupplierParty is the addressee block on a purchase order.
type SupplierParty struct {
	Name        string
	ContactName string
	Address     string
	Email       string
}

// PurchaseOrderDocumentLine carries only what a supplier may see.
type PurchaseOrderDocumentLine struct {
	SKU       string
	Name      string
	Unit      string
	Quantity  string
	UnitPrice string
	LineTotal string
}

// NewPurchaseOrderDocument maps an order and its supplier into the
// supplier-facing view model.
func NewPurchaseOrderDocument(order *purchaseorders.PurchaseOrder, supplier *suppliers.Supplier, orgName, currency string) PurchaseOrderDocument {
	doc := PurchaseOrderDocument{
		DocNumber:    order.DocNumber,
		Date:         order.CreatedAt.Format("2 January 2006"),
		Reference:    order.Reference,
		Organization: orgName,
		Currency:     currency,
		Supplier: SupplierParty{
			Name:        supplier.Name,
			ContactName: supplier.ContactName,
			Address:     supplier.Address,
			Email:       supplier.Email,
		},
		TotalAmount: formatMoney(order.TotalAmount),
		Notes:       order.Notes,
	}
	for _, line := range order.Lines {
		doc.Lines = append(doc.Lines, PurchaseOrderDocumentLine{
			SKU:       line.SKU,
			Name:      line.Name,
			Unit:      line.Unit,
			Quantity:  line.Quantity.String(),
			UnitPrice: formatMoney(line.UnitPrice),
			LineTotal: formatMoney(line.LineTotal),
		})
	}
	return doc
}

var purchaseOrderTemplate = template.Must(template.New("purchase_order").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1a1a1a; margin: 40px; }
h1 { font-size: 20px; margin-bottom: 0; }
.meta { color: #555; margin-bottom: 24px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th { text-align: left; border-bottom: 2px solid #1a1a1a; padding: 6px 8px; }
td { border-bottom: 1px solid #ddd; padding: 6px 8px; }
.num { text-align: right; }
.total { font-weight: bold; font-size: 14px; }
.notes { margin-top: 24px; color: #555; }
</style>
</head>
<body>
<h1>Purchase Order {{.DocNumber}}</h1>
<div class="meta">
{{.Organization}} &middot; {{.Date}}{{if .Reference}} &middot; Ref {{.Reference}}{{end}}
</div>
<div>
<strong>{{.Supplier.Name}}</strong><br>
{{if .Supplier.ContactName}}{{.Supplier.ContactName}}<br>{{end}}
{{if .Supplier.Address}}{{.Supplier.Address}}<br>{{end}}
{{if .Supplier.Email}}{{.Supplier.Email}}{{end}}
</div>
<table>
<tr><th>SKU</th><th>Description</th><th class="num">Qty</th><th>Unit</th><th class="num">Unit Price</th><th class="num">Amount</th></tr>
{{range .Lines}}
<tr><td>{{.SKU}}</td><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td>{{.Unit}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.LineTotal}}</td></tr>
{{end}}
<tr><td colspan="5" class="num total">Total {{.Currency}}</td><td class="num total">{{.TotalAmount}}</td></tr>
</table>
{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
</body>
</html>`))

// BuildPurchaseOrderHTML renders the supplier-facing purchase order document.
func BuildPurchaseOrderHTML(doc PurchaseOrderDocument) (string, error) {
	var buf bytes.Buffer
	if err := purchaseOrderTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PurchaseOrderFilename names the downloaded PDF.
func PurchaseOrderFilename(docNumber string) string {
	return "purchase-order-" + docNumber + "-" + time.Now().Format("20060102") + ".pdf"
}
