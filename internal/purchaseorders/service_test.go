package purchaseorders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/suppliers"
)

type memoryOrderRepo struct {
	orders map[int64]PurchaseOrder
	lines  map[int64]Line
	nextID int64
	seq    int64
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{
		orders: make(map[int64]PurchaseOrder),
		lines:  make(map[int64]Line),
		nextID: 1,
	}
}

func (r *memoryOrderRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryOrderRepo) Get(ctx context.Context, orgID, id int64) (*PurchaseOrder, error) {
	o, ok := r.orders[id]
	if !ok || o.OrganizationID != orgID {
		return nil, httpx.ErrNotFound
	}
	lines, _ := r.GetLines(ctx, id)
	o.Lines = lines
	return &o, nil
}

func (r *memoryOrderRepo) List(ctx context.Context, orgID int64, req ListRequest) ([]PurchaseOrder, int, error) {
	var orders []PurchaseOrder
	for _, o := range r.orders {
		if o.OrganizationID == orgID {
			orders = append(orders, o)
		}
	}
	return orders, len(orders), nil
}

func (r *memoryOrderRepo) Create(ctx context.Context, o PurchaseOrder) (int64, error) {
	o.ID = r.nextID
	r.nextID++
	r.orders[o.ID] = o
	return o.ID, nil
}

func (r *memoryOrderRepo) UpdateHeader(ctx context.Context, o PurchaseOrder) error {
	existing, ok := r.orders[o.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	existing.SupplierID = o.SupplierID
	existing.Reference = o.Reference
	existing.Notes = o.Notes
	r.orders[o.ID] = existing
	return nil
}

func (r *memoryOrderRepo) UpdateStatus(ctx context.Context, orgID, id int64, status Status) error {
	o, ok := r.orders[id]
	if !ok || o.OrganizationID != orgID {
		return httpx.ErrNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *memoryOrderRepo) Delete(ctx context.Context, orgID, id int64) error {
	o, ok := r.orders[id]
	if !ok || o.OrganizationID != orgID {
		return httpx.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryOrderRepo) GetLines(ctx context.Context, orderID int64) ([]Line, error) {
	var lines []Line
	for id := int64(1); id < r.nextID; id++ {
		if line, ok := r.lines[id]; ok && line.PurchaseOrderID == orderID {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (r *memoryOrderRepo) GetLine(ctx context.Context, orderID, lineID int64) (*Line, error) {
	line, ok := r.lines[lineID]
	if !ok || line.PurchaseOrderID != orderID {
		return nil, httpx.ErrNotFound
	}
	return &line, nil
}

func (r *memoryOrderRepo) InsertLine(ctx context.Context, line Line) (int64, error) {
	line.ID = r.nextID
	r.nextID++
	r.lines[line.ID] = line
	return line.ID, nil
}

func (r *memoryOrderRepo) UpdateLine(ctx context.Context, line Line) error {
	if _, ok := r.lines[line.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.lines[line.ID] = line
	return nil
}

func (r *memoryOrderRepo) DeleteLine(ctx context.Context, orderID, lineID int64) error {
	line, ok := r.lines[lineID]
	if !ok || line.PurchaseOrderID != orderID {
		return httpx.ErrNotFound
	}
	delete(r.lines, lineID)
	return nil
}

func (r *memoryOrderRepo) UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	o, ok := r.orders[id]
	if !ok {
		return httpx.ErrNotFound
	}
	o.TotalAmount = total
	r.orders[id] = o
	return nil
}

func (r *memoryOrderRepo) GenerateNumber(ctx context.Context, orgID int64, date time.Time) (string, error) {
	r.seq++
	return fmt.Sprintf("PO-%s-%04d", date.Format("0601"), r.seq), nil
}

type stubSupplierRepo struct {
	byID map[int64]suppliers.Supplier
}

func (r *stubSupplierRepo) List(ctx context.Context, orgID int64, req suppliers.ListRequest) ([]suppliers.Supplier, int, error) {
	return nil, 0, nil
}

func (r *stubSupplierRepo) Get(ctx context.Context, orgID, id int64) (*suppliers.Supplier, error) {
	s, ok := r.byID[id]
	if !ok || s.OrganizationID != orgID {
		return nil, httpx.ErrNotFound
	}
	return &s, nil
}

func (r *stubSupplierRepo) Create(ctx context.Context, s suppliers.Supplier) (int64, error) {
	return 0, nil
}

func (r *stubSupplierRepo) Update(ctx context.Context, s suppliers.Supplier) error { return nil }

func (r *stubSupplierRepo) Delete(ctx context.Context, orgID, id int64) error { return nil }

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

func newOrderService() (*Service, *memoryOrderRepo) {
	repo := newMemoryOrderRepo()
	supRepo := &stubSupplierRepo{byID: map[int64]suppliers.Supplier{
		20: {ID: 20, OrganizationID: 1, Code: "NOR", Name: "Northern Goods"},
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
	return NewService(repo, supRepo, items), repo
}

func createDraft(t *testing.T, svc *Service) *PurchaseOrder {
	t.Helper()
	order, err := svc.Create(context.Background(), 1, 7, CreateOrderRequest{SupplierID: 20})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, order.Status)
	require.NotEmpty(t, order.DocNumber)
	return order
}

func TestOrderLinePricesAtLooseBelowPack(t *testing.T) {
	svc, _ := newOrderService()
	order := createDraft(t, svc)

	updated, err := svc.AddLine(context.Background(), 1, order.ID, LinePayload{ItemID: 100, Quantity: "50"})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	require.True(t, updated.Lines[0].UnitPrice.Equal(dec("76.00")))
	require.True(t, updated.Lines[0].LineTotal.Equal(dec("3800.00")))
	require.True(t, updated.TotalAmount.Equal(dec("3800.00")))
}

func TestOrderLinePricesAtPackBoundary(t *testing.T) {
	svc, _ := newOrderService()
	order := createDraft(t, svc)

	updated, err := svc.AddLine(context.Background(), 1, order.ID, LinePayload{ItemID: 100, Quantity: "60"})
	require.NoError(t, err)
	require.True(t, updated.Lines[0].UnitPrice.Equal(dec("70.00")))
	require.True(t, updated.TotalAmount.Equal(dec("4200.00")))
}

func TestOrderLinePricesAbovePack(t *testing.T) {
	svc, _ := newOrderService()
	order := createDraft(t, svc)

	updated, err := svc.AddLine(context.Background(), 1, order.ID, LinePayload{ItemID: 100, Quantity: "64"})
	require.NoError(t, err)
	require.True(t, updated.Lines[0].UnitPrice.Equal(dec("70.00")))
	require.True(t, updated.TotalAmount.Equal(dec("4480.00")))
}

func TestOrderTotalResumsAcrossMutations(t *testing.T) {
	svc, _ := newOrderService()
	order := createDraft(t, svc)

	first, err := svc.AddLine(context.Background(), 1, order.ID, LinePayload{ItemID: 100, Quantity: "50"})
	require.NoError(t, err)
	second, err := svc.AddLine(context.Background(), 1, order.ID, LinePayload{ItemID: 100, Quantity: "60"})
	require.NoError(t, err)
	require.True(t, second.TotalAmount.Equal(dec("8000.00")), "3800 + 4200")

	shrunk, err := svc.UpdateLine(context.Background(), 1, order.ID, second.Lines[1].ID, LinePayload{ItemID: 100, Quantity: "10"})
	require.NoError(t, err)
	require.True(t, shrunk.Lines[1].UnitPrice.Equal(dec("76.00")), "pricing follows the new quantity")
	require.True(t, shrunk.TotalAmount.Equal(dec("4560.00")), "3800 + 760")

	afterDelete, err := svc.DeleteLine(context.Background(), 1, order.ID, first.Lines[0].ID)
	require.NoError(t, err)
	require.True(t, afterDelete.TotalAmount.Equal(dec("760.00")))
}

func TestOrderLineMutationRequiresDraft(t *testing.T) {
	svc, _ := newOrderService()
	order := createDraft(t, svc)

	_, err := svc.AddLine(context.Background(), 1, order.ID, LinePayload{ItemID: 100, Quantity: "10"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), 1, order.ID, StatusSent)
	require.NoError(t, err)

	_, err = svc.AddLine(context.Background(), 1, order.ID, LinePayload{ItemID: 100, Quantity: "5"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestOrderStatusTransitions(t *testing.T) {
	svc, _ := newOrderService()
	order := createDraft(t, svc)

	_, err := svc.UpdateStatus(context.Background(), 1, order.ID, StatusReceived)
	require.ErrorIs(t, err, httpx.ErrValidation, "draft cannot jump straight to received")

	_, err = svc.UpdateStatus(context.Background(), 1, order.ID, StatusSent)
	require.NoError(t, err)
	received, err := svc.UpdateStatus(context.Background(), 1, order.ID, StatusReceived)
	require.NoError(t, err)
	require.Equal(t, StatusReceived, received.Status)

	_, err = svc.UpdateStatus(context.Background(), 1, order.ID, StatusCancelled)
	require.ErrorIs(t, err, httpx.ErrValidation, "received is terminal")
}

func TestOrderRejectsUnknownSupplier(t *testing.T) {
	svc, _ := newOrderService()
	_, err := svc.Create(context.Background(), 1, 7, CreateOrderRequest{SupplierID: 999})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestOrderCrossTenantHidden(t *testing.T) {
	svc, _ := newOrderService()
	order := createDraft(t, svc)

	_, err := svc.Get(context.Background(), 2, order.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
