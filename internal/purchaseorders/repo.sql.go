package purchaseorders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

const (
	orderColumns = `id, organization_id, doc_number, supplier_id, reference, status, notes,
		total_amount, created_by, created_at, updated_at`
	lineColumns = `id, purchase_order_id, item_id, sku, name, unit, quantity, unit_price,
		line_total, created_at, updated_at`
)

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL purchase order repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (*PurchaseOrder, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM purchase_orders
		WHERE organization_id = $1 AND id = $2
	`, orgID, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.GetLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return &order, nil
}

func (r *repository) List(ctx context.Context, orgID int64, req ListRequest) ([]PurchaseOrder, int, error) {
	where := `WHERE organization_id = $1`
	args := []any{orgID}
	if req.SupplierID > 0 {
		args = append(args, req.SupplierID)
		where += fmt.Sprintf(` AND supplier_id = $%d`, len(args))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM purchase_orders %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, o PurchaseOrder) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO purchase_orders (organization_id, doc_number, supplier_id, reference, status, notes, total_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, o.OrganizationID, o.DocNumber, o.SupplierID, o.Reference, o.Status, o.Notes, o.TotalAmount, o.CreatedBy).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: purchase order %s", httpx.ErrDuplicate, o.DocNumber)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, o PurchaseOrder) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE purchase_orders
		SET supplier_id = $3, reference = $4, notes = $5, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, o.OrganizationID, o.ID, o.SupplierID, o.Reference, o.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, orgID, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE purchase_orders SET status = $3, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, orgID, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM purchase_orders WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) GetLines(ctx context.Context, orderID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+lineColumns+`
		FROM purchase_order_lines
		WHERE purchase_order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *repository) GetLine(ctx context.Context, orderID, lineID int64) (*Line, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+lineColumns+`
		FROM purchase_order_lines
		WHERE purchase_order_id = $1 AND id = $2
	`, orderID, lineID)
	line, err := scanLine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

func (r *repository) InsertLine(ctx context.Context, l Line) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO purchase_order_lines (purchase_order_id, item_id, sku, name, unit, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, l.PurchaseOrderID, l.ItemID, l.SKU, l.Name, l.Unit, l.Quantity, l.UnitPrice, l.LineTotal).Scan(&id)
	return id, err
}

func (r *repository) UpdateLine(ctx context.Context, l Line) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE purchase_order_lines
		SET quantity = $3, unit_price = $4, line_total = $5, updated_at = NOW()
		WHERE purchase_order_id = $1 AND id = $2
	`, l.PurchaseOrderID, l.ID, l.Quantity, l.UnitPrice, l.LineTotal)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteLine(ctx context.Context, orderID, lineID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM purchase_order_lines WHERE purchase_order_id = $1 AND id = $2`, orderID, lineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		UPDATE purchase_orders SET total_amount = $2, updated_at = NOW() WHERE id = $1
	`, id, total)
	return err
}

func (r *repository) GenerateNumber(ctx context.Context, orgID int64, date time.Time) (string, error) {
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (organization_id, doc_type, period, seq)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (organization_id, doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, orgID, "PO", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%s-%04d", date.Format("0601"), seq), nil
}

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var o PurchaseOrder
	err := row.Scan(
		&o.ID,
		&o.OrganizationID,
		&o.DocNumber,
		&o.SupplierID,
		&o.Reference,
		&o.Status,
		&o.Notes,
		&o.TotalAmount,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func scanLine(row pgx.Row) (Line, error) {
	var l Line
	err := row.Scan(
		&l.ID,
		&l.PurchaseOrderID,
		&l.ItemID,
		&l.SKU,
		&l.Name,
		&l.Unit,
		&l.Quantity,
		&l.UnitPrice,
		&l.LineTotal,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

var _ Repository = (*repository)(nil)
