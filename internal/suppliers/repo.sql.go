package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

const supplierColumns = `id, organization_id, code, name, contact_name, email, phone, address, payment_terms, created_at, updated_at`

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context, orgID int64, req ListRequest) ([]Supplier, int, error) {
	where := `WHERE organization_id = $1`
	args := []any{orgID}
	if req.Search != "" {
		where += ` AND (code ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')`
		args = append(args, req.Search)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM suppliers %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		supplierColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		supplier, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, orgID, id int64) (*Supplier, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE organization_id = $1 AND id = $2
	`, orgID, id)
	supplier, err := scanSupplier(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *PGRepository) Create(ctx context.Context, s Supplier) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO suppliers (organization_id, code, name, contact_name, email, phone, address, payment_terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, s.OrganizationID, s.Code, s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.PaymentTerms).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: supplier code %q", httpx.ErrDuplicate, s.Code)
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Update(ctx context.Context, s Supplier) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE suppliers
		SET code = $3, name = $4, contact_name = $5, email = $6, phone = $7, address = $8, payment_terms = $9, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, s.OrganizationID, s.ID, s.Code, s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.PaymentTerms)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: supplier code %q", httpx.ErrDuplicate, s.Code)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, orgID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(
		&s.ID,
		&s.OrganizationID,
		&s.Code,
		&s.Name,
		&s.ContactName,
		&s.Email,
		&s.Phone,
		&s.Address,
		&s.PaymentTerms,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

var _ Repository = (*PGRepository)(nil)
