package tenancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

// PGRepository provides PostgreSQL backed gate lookups.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetPrincipal loads the gate view of a user. Inactive accounts resolve to
// unauthorized: a session must not outlive its account.
func (r *PGRepository) GetPrincipal(ctx context.Context, userID int64) (*Principal, error) {
	var (
		p        Principal
		isActive bool
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, role, organization_id, is_active
		FROM users
		WHERE id = $1
	`, userID).Scan(&p.UserID, &p.Email, &p.Role, &p.OrganizationID, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrUnauthorized
		}
		return nil, err
	}
	if !isActive {
		return nil, fmt.Errorf("%w: account deactivated", httpx.ErrUnauthorized)
	}
	return &p, nil
}

// GetSubscription loads the subscription record of an organization.
func (r *PGRepository) GetSubscription(ctx context.Context, orgID int64) (*Subscription, error) {
	var sub Subscription
	err := r.pool.QueryRow(ctx, `
		SELECT organization_id, status, period_end, indefinite, updated_at
		FROM subscriptions
		WHERE organization_id = $1
	`, orgID).Scan(&sub.OrganizationID, &sub.Status, &sub.PeriodEnd, &sub.Indefinite, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: organization %d has no subscription", httpx.ErrForbidden, orgID)
		}
		return nil, err
	}
	return &sub, nil
}

var _ Repository = (*PGRepository)(nil)
