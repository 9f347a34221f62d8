package quotes

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/customers"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/pricing"
)

type memoryQuoteRepo struct {
	quotes  map[int64]Quote
	lines   map[int64]Line
	nextID  int64
	seqByQT int64
}

func newMemoryQuoteRepo() *memoryQuoteRepo {
	return &memoryQuoteRepo{
		quotes: make(map[int64]Quote),
		lines:  make(map[int64]Line),
		nextID: 1,
	}
}

func (r *memoryQuoteRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryQuoteRepo) Get(ctx context.Context, orgID, id int64) (*Quote, error) {
	q, ok := r.quotes[id]
	if !ok || q.OrganizationID != orgID {
		return nil, httpx.ErrNotFound
	}
	lines, _ := r.GetLines(ctx, id)
	q.Lines = lines
	return &q, nil
}

func (r *memoryQuoteRepo) List(ctx context.Context, orgID int64, req ListRequest) ([]Quote, int, error) {
	var quotes []Quote
	for _, q := range r.quotes {
		if q.OrganizationID == orgID {
			quotes = append(quotes, q)
		}
	}
	return quotes, len(quotes), nil
}

func (r *memoryQuoteRepo) Create(ctx context.Context, q Quote) (int64, error) {
	q.ID = r.nextID
	r.nextID++
	r.quotes[q.ID] = q
	return q.ID, nil
}

func (r *memoryQuoteRepo) UpdateHeader(ctx context.Context, q Quote) error {
	existing, ok := r.quotes[q.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	existing.CustomerID = q.CustomerID
	existing.Reference = q.Reference
	existing.Notes = q.Notes
	r.quotes[q.ID] = existing
	return nil
}

func (r *memoryQuoteRepo) UpdateStatus(ctx context.Context, orgID, id int64, status Status) error {
	q, ok := r.quotes[id]
	if !ok || q.OrganizationID != orgID {
		return httpx.ErrNotFound
	}
	q.Status = status
	r.quotes[id] = q
	return nil
}

func (r *memoryQuoteRepo) Delete(ctx context.Context, orgID, id int64) error {
	q, ok := r.quotes[id]
	if !ok || q.OrganizationID != orgID {
		return httpx.ErrNotFound
	}
	delete(r.quotes, id)
	return nil
}

func (r *memoryQuoteRepo) GetLines(ctx context.Context, quoteID int64) ([]Line, error) {
	var lines []Line
	for id := int64(1); id < r.nextID; id++ {
		if line, ok := r.lines[id]; ok && line.QuoteID == quoteID {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (r *memoryQuoteRepo) GetLine(ctx context.Context, quoteID, lineID int64) (*Line, error) {
	line, ok := r.lines[lineID]
	if !ok || line.QuoteID != quoteID {
		return nil, httpx.ErrNotFound
	}
	return &line, nil
}

func (r *memoryQuoteRepo) InsertLine(ctx context.Context, line Line) (int64, error) {
	line.ID = r.nextID
	r.nextID++
	r.lines[line.ID] = line
	return line.ID, nil
}

func (r *memoryQuoteRepo) UpdateLine(ctx context.Context, line Line) error {
	if _, ok := r.lines[line.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.lines[line.ID] = line
	return nil
}

func (r *memoryQuoteRepo) DeleteLine(ctx context.Context, quoteID, lineID int64) error {
	line, ok := r.lines[lineID]
	if !ok || line.QuoteID != quoteID {
		return httpx.ErrNotFound
	}
	delete(r.lines, lineID)
	return nil
}

func (r *memoryQuoteRepo) UpdateTotals(ctx context.Context, id int64, totals pricing.DocumentTotals) error {
	q, ok := r.quotes[id]
	if !ok {
		return httpx.ErrNotFound
	}
	q.TotalAmount = totals.TotalAmount
	q.TotalMargin = totals.TotalMargin
	q.MarginPercentage = totals.MarginPercentage
	r.quotes[id] = q
	return nil
}

func (r *memoryQuoteRepo) GenerateNumber(ctx context.Context, orgID int64, date time.Time) (string, error) {
	r.seqByQT++
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), r.seqByQT), nil
}

type stubCustomerRepo struct {
	byID map[int64]customers.Customer
}

func (r *stubCustomerRepo) List(ctx context.Context, orgID int64, req customers.ListRequest) ([]customers.Customer, int, error) {
	return nil, 0, nil
}

func (r *stubCustomerRepo) Get(ctx context.Context, orgID, id int64) (*customers.Customer, error) {
	c, ok := r.byID[id]
	if !ok || c.OrganizationID != orgID {
		return nil, httpx.ErrNotFound
	}
	return &c, nil
}

func (r *stubCustomerRepo) Create(ctx context.Context, c customers.Customer) (int64, error) {
	return 0, nil
}

func (r *stubCustomerRepo) Update(ctx context.Context, c customers.Customer) error { return nil }

func (r *stubCustomerRepo) Delete(ctx context.Context, orgID, id int64) error { return nil }

type stubItemSource struct {
	byID map[int64]catalog.Item
}

func (s *stubItemSource) GetItem(ctx context.Context, orgID, id int64) (*catalog.Item, error) {
	item, ok := s.byID[id]
	if !ok || item.OrganizationID != orgID {
		return nil, httpx.ErrNotFound
	}
	return &item, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

// Widget carries the canonical pack pricing setup: loose 76.00, pack 70.00 at
// pack size 60, sold at 100.00.
func newQuoteService() (*Service, *memoryQuoteRepo) {
	repo := newMemoryQuoteRepo()
	custRepo := &stubCustomerRepo{byID: map[int64]customers.Customer{
		10: {ID: 10, OrganizationID: 1, Code: "ACME", Name: "Acme Wholesale"},
	}}
	items := &stubItemSource{byID: map[int64]catalog.Item{
		100: {
			ID: 100, OrganizationID: 1, PricelistID: 1,
			SKU: "WID-1", Name: "Widget", Unit: "pcs",
			LooseBuyPrice: dec("76.00"),
			PackBuyPrice:  nullDec("70.00"),
			PackSize:      nullDec("60"),
			SellPrice:     dec("100.00"),
		},
	}}
	return NewService(repo, custRepo, items), repo
}

func createDraft(t *testing.T, svc *Service) *Quote {
	t.Helper()
	quote, err := svc.Create(context.Background(), 1, 7, CreateQuoteRequest{CustomerID: 10, Reference: "REF-1"})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, quote.Status)
	require.NotEmpty(t, quote.DocNumber)
	return quote
}

func TestCreateRejectsUnknownCustomer(t *testing.T) {
	svc, _ := newQuoteService()
	_, err := svc.Create(context.Background(), 1, 7, CreateQuoteRequest{CustomerID: 999})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAddLineBelowPackBoundary(t *testing.T) {
	svc, _ := newQuoteService()
	quote := createDraft(t, svc)

	updated, err := svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "50"})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)

	line := updated.Lines[0]
	require.True(t, line.BuyPrice.Equal(dec("76.00")), "below pack size buys loose")
	require.True(t, line.LineTotal.Equal(dec("5000.00")))
	require.True(t, line.Margin.Equal(dec("1200.00")))
	require.True(t, updated.TotalAmount.Equal(dec("5000.00")))
	require.True(t, updated.TotalMargin.Equal(dec("1200.00")))
	require.True(t, updated.MarginPercentage.Equal(dec("24")))
}

func TestAddLineAtPackBoundary(t *testing.T) {
	svc, _ := newQuoteService()
	quote := createDraft(t, svc)

	updated, err := svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "60"})
	require.NoError(t, err)
	require.True(t, updated.Lines[0].BuyPrice.Equal(dec("70.00")), "boundary is inclusive")
}

func TestUpdateLineRecrossesPackBoundary(t *testing.T) {
	svc, _ := newQuoteService()
	quote := createDraft(t, svc)

	updated, err := svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "64"})
	require.NoError(t, err)
	require.True(t, updated.Lines[0].BuyPrice.Equal(dec("70.00")))

	updated, err = svc.UpdateLine(context.Background(), 1, quote.ID, updated.Lines[0].ID, LinePayload{ItemID: 100, Quantity: "50"})
	require.NoError(t, err)
	require.True(t, updated.Lines[0].BuyPrice.Equal(dec("76.00")), "dropping below pack size reverts to loose")
	require.True(t, updated.TotalAmount.Equal(dec("5000.00")))
	require.True(t, updated.TotalMargin.Equal(dec("1200.00")))
}

func TestAggregateResumsAcrossMutations(t *testing.T) {
	svc, _ := newQuoteService()
	quote := createDraft(t, svc)

	first, err := svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "50"})
	require.NoError(t, err)
	second, err := svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "60"})
	require.NoError(t, err)
	require.Len(t, second.Lines, 2)

	// 50 x 100 + 60 x 100
	require.True(t, second.TotalAmount.Equal(dec("11000.00")))
	// 50 x 24 + 60 x 30
	require.True(t, second.TotalMargin.Equal(dec("3000.00")))

	afterDelete, err := svc.DeleteLine(context.Background(), 1, quote.ID, first.Lines[0].ID)
	require.NoError(t, err)
	require.Len(t, afterDelete.Lines, 1)
	require.True(t, afterDelete.TotalAmount.Equal(dec("6000.00")))
	require.True(t, afterDelete.TotalMargin.Equal(dec("1800.00")))

	empty, err := svc.DeleteLine(context.Background(), 1, quote.ID, afterDelete.Lines[0].ID)
	require.NoError(t, err)
	require.Empty(t, empty.Lines)
	require.True(t, empty.TotalAmount.IsZero())
	require.True(t, empty.TotalMargin.IsZero())
	require.True(t, empty.MarginPercentage.IsZero(), "zero-amount document has zero margin percentage")
}

func TestNegativeMarginAllowed(t *testing.T) {
	svc, _ := newQuoteService()
	quote := createDraft(t, svc)

	below := "70.00"
	updated, err := svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "10", SellPrice: &below})
	require.NoError(t, err)
	require.True(t, updated.Lines[0].Margin.Equal(dec("-60.00")), "selling below loose cost is permitted")
	require.True(t, updated.TotalMargin.IsNegative())
}

func TestLineMutationRequiresDraft(t *testing.T) {
	svc, _ := newQuoteService()
	quote := createDraft(t, svc)

	_, err := svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "10"})
	require.NoError(t, err)

	sent, err := svc.UpdateStatus(context.Background(), 1, quote.ID, StatusSent)
	require.NoError(t, err)
	require.Equal(t, StatusSent, sent.Status)

	_, err = svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "5"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.DeleteLine(context.Background(), 1, quote.ID, sent.Lines[0].ID)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestStatusTransitions(t *testing.T) {
	svc, _ := newQuoteService()
	quote := createDraft(t, svc)

	_, err := svc.UpdateStatus(context.Background(), 1, quote.ID, StatusAccepted)
	require.ErrorIs(t, err, httpx.ErrValidation, "draft cannot jump straight to accepted")

	_, err = svc.UpdateStatus(context.Background(), 1, quote.ID, StatusSent)
	require.NoError(t, err)
	accepted, err := svc.UpdateStatus(context.Background(), 1, quote.ID, StatusAccepted)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, accepted.Status)

	_, err = svc.UpdateStatus(context.Background(), 1, quote.ID, StatusDeclined)
	require.ErrorIs(t, err, httpx.ErrValidation, "accepted is terminal")
}

func TestQuantityValidation(t *testing.T) {
	svc, _ := newQuoteService()
	quote := createDraft(t, svc)

	_, err := svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "0"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "-3"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.AddLine(context.Background(), 1, quote.ID, LinePayload{ItemID: 100, Quantity: "many"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCrossTenantQuoteHidden(t *testing.T) {
	svc, _ := newQuoteService()
	quote := createDraft(t, svc)

	_, err := svc.Get(context.Background(), 2, quote.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	_, err = svc.AddLine(context.Background(), 2, quote.ID, LinePayload{ItemID: 100, Quantity: "5"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
