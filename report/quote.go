package report

import (
	"bytes"
	"html/template"
	"time"

	"github.com/tradewind-erp/tradewind/internal/customers"
	"github.com/tradewind-erp/tradewind/internal/quotes"
)

// QuoteDocument is the customer-facing view of a quote. It deliberately has
// no buy-price or margin fields: what the struct lacks, the PDF cannot leak.
type QuoteDocument struct {
	DocNumber    string
	Date         string
	Reference    string
	Organization string
	Currency     string
	Customer     QuoteParty
	Lines        []QuoteDocumentLine
	TotalAmount  string
	Notes        string
}

// QuoteParty is the addressee block on a quote.
type QuoteParty struct {
	Name        string
	ContactName string
	Address     string
	Email       string
}

// QuoteDocumentLine carries only what a customer may see.
type QuoteDocumentLine struct {
	SKU       string
	Name      string
	Unit      string
	Quantity  string
	UnitPrice string
	LineTotal string
}

// NewQuoteDocument maps a quote and its customer into the customer-facing
// view model.
func NewQuoteDocument(quote *quotes.Quote, customer *customers.Customer, orgName, currency string) QuoteDocument {
	doc := QuoteDocument{
		DocNumber:    quote.DocNumber,
		Date:         quote.CreatedAt.Format("2 January 2006"),
		Reference:    quote.Reference,
		Organization: orgName,
		Currency:     currency,
		Customer: QuoteParty{
			Name:        customer.Name,
			ContactName: customer.ContactName,
			Address:     customer.Address,
			Email:       customer.Email,
		},
		TotalAmount: formatMoney(quote.TotalAmount),
		Notes:       quote.Notes,
	}
	for _, line := range quote.Lines {
		doc.Lines = append(doc.Lines, QuoteDocumentLine{
			SKU:       line.SKU,
			Name:      line.Name,
			Unit:      line.Unit,
			Quantity:  line.Quantity.String(),
			UnitPrice: formatMoney(line.SellPrice),
			LineTotal: formatMoney(line.LineTotal),
		})
	}
	return doc
}

var quoteTemplate = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
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
<h1>Quote {{.DocNumber}}</h1>
<div class="meta">
{{.Organization}} &middot; {{.Date}}{{if .Reference}} &middot; Ref {{.Reference}}{{end}}
</div>
<div>
<strong>{{.Customer.Name}}</strong><br>
{{if .Customer.ContactName}}{{.Customer.ContactName}}<br>{{end}}
{{if .Customer.Address}}{{.Customer.Address}}<br>{{end}}
{{if .Customer.Email}}{{.Customer.Email}}{{end}}
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

// BuildQuoteHTML renders the customer-facing quote document.
func BuildQuoteHTML(doc QuoteDocument) (string, error) {
	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// QuoteFilename names the downloaded PDF.
func QuoteFilename(docNumber string) string {
	return "quote-" + docNumber + "-" + time.Now().Format("20060102") + ".pdf"
}
