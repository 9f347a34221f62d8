package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/pricing"
)

const (
	quoteColumns = `id, organization_id, doc_number, customer_id, reference, status, notes,
		total_amount, total_margin, margin_percentage, created_by, created_at, updated_at`
	lineColumns = `id, quote_id, item_id, sku, name, unit, quantity, sell_price, buy_price,
		line_total, margin, created_at, updated_at`
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

// NewRepository constructs a PostgreSQL quote repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Quote, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE organization_id = $1 AND id = $2
	`, orgID, id)
	quote, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.GetLines(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	quote.Lines = lines
	return &quote, nil
}

func (r *repository) List(ctx context.Context, orgID int64, req ListRequest) ([]Quote, int, error) {
	where := `WHERE organization_id = $1`
	args := []any{orgID}
	if req.CustomerID > 0 {
		args = append(args, req.CustomerID)
		where += fmt.Sprintf(` AND customer_id = $%d`, len(args))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM quotes %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		quoteColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quote) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotes (organization_id, doc_number, customer_id, reference, status, notes,
			total_amount, total_margin, margin_percentage, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, q.OrganizationID, q.DocNumber, q.CustomerID, q.Reference, q.Status, q.Notes,
		q.TotalAmount, q.TotalMargin, q.MarginPercentage, q.CreatedBy).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: quote %s", httpx.ErrDuplicate, q.DocNumber)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, q Quote) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotes
		SET customer_id = $3, reference = $4, notes = $5, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, q.OrganizationID, q.ID, q.CustomerID, q.Reference, q.Notes)
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
		UPDATE quotes SET status = $3, updated_at = NOW()
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
	tag, err := r.db.Exec(ctx, `DELETE FROM quotes WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) GetLines(ctx context.Context, quoteID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+lineColumns+`
		FROM quote_lines
		WHERE quote_id = $1
		ORDER BY id
	`, quoteID)
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

func (r *repository) GetLine(ctx context.Context, quoteID, lineID int64) (*Line, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+lineColumns+`
		FROM quote_lines
		WHERE quote_id = $1 AND id = $2
	`, quoteID, lineID)
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
		INSERT INTO quote_lines (quote_id, item_id, sku, name, unit, quantity, sell_price, buy_price, line_total, margin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, l.QuoteID, l.ItemID, l.SKU, l.Name, l.Unit, l.Quantity, l.SellPrice, l.BuyPrice, l.LineTotal, l.Margin).Scan(&id)
	return id, err
}

func (r *repository) UpdateLine(ctx context.Context, l Line) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quote_lines
		SET quantity = $3, sell_price = $4, buy_price = $5, line_total = $6, margin = $7, updated_at = NOW()
		WHERE quote_id = $1 AND id = $2
	`, l.QuoteID, l.ID, l.Quantity, l.SellPrice, l.BuyPrice, l.LineTotal, l.Margin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteLine(ctx context.Context, quoteID, lineID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quote_lines WHERE quote_id = $1 AND id = $2`, quoteID, lineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateTotals(ctx context.Context, id int64, totals pricing.DocumentTotals) error {
	_, err := r.db.Exec(ctx, `
		UPDATE quotes
		SET total_amount = $2, total_margin = $3, margin_percentage = $4, updated_at = NOW()
		WHERE id = $1
	`, id, totals.TotalAmount, totals.TotalMargin, totals.MarginPercentage)
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
	`, orgID, "QT", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), seq), nil
}

func scanQuote(row pgx.Row) (Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID,
		&q.OrganizationID,
		&q.DocNumber,
		&q.CustomerID,
		&q.Reference,
		&q.Status,
		&q.Notes,
		&q.TotalAmount,
		&q.TotalMargin,
		&q.MarginPercentage,
		&q.CreatedBy,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	return q, err
}

func scanLine(row pgx.Row) (Line, error) {
	var l Line
	err := row.Scan(
		&l.ID,
		&l.QuoteID,
		&l.ItemID,
		&l.SKU,
		&l.Name,
		&l.Unit,
		&l.Quantity,
		&l.SellPrice,
		&l.BuyPrice,
		&l.LineTotal,
		&l.Margin,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

var _ Repository = (*repository)(nil)
