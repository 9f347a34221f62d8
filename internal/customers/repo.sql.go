package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

const customerColumns = `id, organization_id, code, name, contact_name, email, phone, address, created_at, updated_at`

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context, orgID int64, req ListRequest) ([]Customer, int, error) {
	where := `WHERE organization_id = $1`
	args := []any{orgID}
	if req.Search != "" {
		where += ` AND (code ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')`
		args = append(args, req.Search)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		customerColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, customer)
	}
	return customers, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, orgID, id int64) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE organization_id = $1 AND id = $2
	`, orgID, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *PGRepository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (organization_id, code, name, contact_name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, c.OrganizationID, c.Code, c.Name, c.ContactName, c.Email, c.Phone, c.Address).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: customer code %q", httpx.ErrDuplicate, c.Code)
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Update(ctx context.Context, c Customer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET code = $3, name = $4, contact_name = $5, email = $6, phone = $7, address = $8, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, c.OrganizationID, c.ID, c.Code, c.Name, c.ContactName, c.Email, c.Phone, c.Address)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: customer code %q", httpx.ErrDuplicate, c.Code)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, orgID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.Code,
		&c.Name,
		&c.ContactName,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

var _ Repository = (*PGRepository)(nil)
