package suppliers

import "context"

// Repository persists suppliers. Every call is scoped to one organization.
type Repository interface {
	List(ctx context.Context, orgID int64, req ListRequest) ([]Supplier, int, error)
	Get(ctx context.Context, orgID, id int64) (*Supplier, error)
	Create(ctx context.Context, supplier Supplier) (int64, error)
	Update(ctx context.Context, supplier Supplier) error
	Delete(ctx context.Context, orgID, id int64) error
}
