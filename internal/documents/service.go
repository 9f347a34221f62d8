// Package documents produces and delivers the PDF renditions of quotes and
// purchase orders. Rendering happens outside the core transactions: the
// synchronous endpoint renders on demand, delivery goes through the job
// queue.
package documents

import (
	"context"
	"fmt"

	"github.com/tradewind-erp/tradewind/internal/customers"
	"github.com/tradewind-erp/tradewind/internal/orgs"
	"github.com/tradewind-erp/tradewind/internal/purchaseorders"
	"github.com/tradewind-erp/tradewind/internal/quotes"
	"github.com/tradewind-erp/tradewind/internal/suppliers"
	"github.com/tradewind-erp/tradewind/report"
)

// Renderer converts HTML to PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// DocumentMailer delivers a rendered PDF.
type DocumentMailer interface {
	SendDocument(ctx context.Context, to, subject, body, filename string, pdf []byte) error
}

type QuoteSource interface {
	Get(ctx context.Context, orgID, id int64) (*quotes.Quote, error)
}

type OrderSource interface {
	Get(ctx context.Context, orgID, id int64) (*purchaseorders.PurchaseOrder, error)
}

type CustomerSource interface {
	Get(ctx context.Context, orgID, id int64) (*customers.Customer, error)
}

type SupplierSource interface {
	Get(ctx context.Context, orgID, id int64) (*suppliers.Supplier, error)
}

type OrgSource interface {
	Get(ctx context.Context, id int64) (*orgs.Organization, error)
}

type Service struct {
	quotes    QuoteSource
	orders    OrderSource
	customers CustomerSource
	suppliers SupplierSource
	orgs      OrgSource
	renderer  Renderer
	mailer    DocumentMailer
	currency  string
}

func NewService(quoteSource QuoteSource, orderSource OrderSource, customerSource CustomerSource, supplierSource SupplierSource, orgSource OrgSource, renderer Renderer, mailer DocumentMailer, currency string) *Service {
	return &Service{
		quotes:    quoteSource,
		orders:    orderSource,
		customers: customerSource,
		suppliers: supplierSource,
		orgs:      orgSource,
		renderer:  renderer,
		mailer:    mailer,
		currency:  currency,
	}
}

// RenderQuote produces the customer-facing PDF of a quote.
func (s *Service) RenderQuote(ctx context.Context, orgID, quoteID int64) ([]byte, string, error) {
	quote, err := s.quotes.Get(ctx, orgID, quoteID)
	if err != nil {
		return nil, "", err
	}
	customer, err := s.customers.Get(ctx, orgID, quote.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("load customer: %w", err)
	}
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, "", fmt.Errorf("load organization: %w", err)
	}

	html, err := report.BuildQuoteHTML(report.NewQuoteDocument(quote, customer, org.Name, s.currency))
	if err != nil {
		return nil, "", fmt.Errorf("build quote html: %w", err)
	}
	pdf, err := s.renderer.RenderHTML(ctx, html)
	if err != nil {
		return nil, "", fmt.Errorf("render quote pdf: %w", err)
	}
	return pdf, report.QuoteFilename(quote.DocNumber), nil
}

// RenderPurchaseOrder produces the supplier-facing PDF of a purchase order.
func (s *Service) RenderPurchaseOrder(ctx context.Context, orgID, orderID int64) ([]byte, string, error) {
	order, err := s.orders.Get(ctx, orgID, orderID)
	if err != nil {
		return nil, "", err
	}
	supplier, err := s.suppliers.Get(ctx, orgID, order.SupplierID)
	if err != nil {
		return nil, "", fmt.Errorf("load supplier: %w", err)
	}
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, "", fmt.Errorf("load organization: %w", err)
	}

	html, err := report.BuildPurchaseOrderHTML(report.NewPurchaseOrderDocument(order, supplier, org.Name, s.currency))
	if err != nil {
		return nil, "", fmt.Errorf("build purchase order html: %w", err)
	}
	pdf, err := s.renderer.RenderHTML(ctx, html)
	if err != nil {
		return nil, "", fmt.Errorf("render purchase order pdf: %w", err)
	}
	return pdf, report.PurchaseOrderFilename(order.DocNumber), nil
}

// EmailQuote renders the quote and mails it to the recipient.
func (s *Service) EmailQuote(ctx context.Context, orgID, quoteID int64, recipient string) error {
	pdf, filename, err := s.RenderQuote(ctx, orgID, quoteID)
	if err != nil {
		return err
	}
	quote, err := s.quotes.Get(ctx, orgID, quoteID)
	if err != nil {
		return err
	}
	subject := "Quote " + quote.DocNumber
	body := "Please find quote " + quote.DocNumber + " attached.\r\n"
	return s.mailer.SendDocument(ctx, recipient, subject, body, filename, pdf)
}

// EmailPurchaseOrder renders the order and mails it to the recipient.
func (s *Service) EmailPurchaseOrder(ctx context.Context, orgID, orderID int64, recipient string) error {
	pdf, filename, err := s.RenderPurchaseOrder(ctx, orgID, orderID)
	if err != nil {
		return err
	}
	order, err := s.orders.Get(ctx, orgID, orderID)
	if err != nil {
		return err
	}
	subject := "Purchase order " + order.DocNumber
	body := "Please find purchase order " + order.DocNumber + " attached.\r\n"
	return s.mailer.SendDocument(ctx, recipient, subject, body, filename, pdf)
}
