package orgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context, req ListRequest) ([]Organization, int, error) {
	where := ""
	var args []any
	if req.Search != "" {
		where = ` WHERE (name ILIKE '%' || $1 || '%' OR slug ILIKE '%' || $1 || '%')`
		args = append(args, req.Search)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM organizations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, name, slug, created_at, updated_at
		FROM organizations%s
		ORDER BY name, id LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orgs = append(orgs, org)
	}
	return orgs, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id int64) (*Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, slug, created_at, updated_at
		FROM organizations WHERE id = $1
	`, id).Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *PGRepository) Create(ctx context.Context, org Organization) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, slug) VALUES ($1, $2) RETURNING id
	`, org.Name, org.Slug).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: organization slug %q", httpx.ErrDuplicate, org.Slug)
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Update(ctx context.Context, org Organization) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE organizations SET name = $2, slug = $3, updated_at = NOW() WHERE id = $1
	`, org.ID, org.Name, org.Slug)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: organization slug %q", httpx.ErrDuplicate, org.Slug)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) GetSubscription(ctx context.Context, orgID int64) (*Subscription, error) {
	var sub Subscription
	err := r.pool.QueryRow(ctx, `
		SELECT organization_id, status, period_end, indefinite, updated_at
		FROM subscriptions WHERE organization_id = $1
	`, orgID).Scan(&sub.OrganizationID, &sub.Status, &sub.PeriodEnd, &sub.Indefinite, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *PGRepository) UpsertSubscription(ctx context.Context, sub Subscription) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscriptions (organization_id, status, period_end, indefinite)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id) DO UPDATE
		SET status = EXCLUDED.status, period_end = EXCLUDED.period_end,
		    indefinite = EXCLUDED.indefinite, updated_at = NOW()
	`, sub.OrganizationID, sub.Status, sub.PeriodEnd, sub.Indefinite)
	return err
}

var _ Repository = (*PGRepository)(nil)
