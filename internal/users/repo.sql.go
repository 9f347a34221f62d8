package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

const userColumns = `id, organization_id, email, full_name, role, is_active, last_seen_at, created_at, updated_at`

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context, orgID int64, req ListRequest) ([]User, int, error) {
	where := `WHERE organization_id = $1`
	args := []any{orgID}
	if req.Search != "" {
		where += ` AND (email ILIKE '%' || $2 || '%' OR full_name ILIKE '%' || $2 || '%')`
		args = append(args, req.Search)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY email, id LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, orgID, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE organization_id = $1 AND id = $2
	`, orgID, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PGRepository) Create(ctx context.Context, u User, passwordHash string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (organization_id, email, full_name, role, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id
	`, u.OrganizationID, strings.ToLower(u.Email), u.FullName, u.Role, passwordHash).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) Update(ctx context.Context, u User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET full_name = $3, role = $4, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, u.OrganizationID, u.ID, u.FullName, u.Role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetActive(ctx context.Context, orgID, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET is_active = $3, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, orgID, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.OrganizationID,
		&u.Email,
		&u.FullName,
		&u.Role,
		&u.IsActive,
		&u.LastSeenAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

var _ Repository = (*PGRepository)(nil)
