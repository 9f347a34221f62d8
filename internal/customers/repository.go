package customers

import "context"

// Repository persists customers. Every call is scoped to one organization.
type Repository interface {
	List(ctx context.Context, orgID int64, req ListRequest) ([]Customer, int, error)
	Get(ctx context.Context, orgID, id int64) (*Customer, error)
	Create(ctx context.Context, customer Customer) (int64, error)
	Update(ctx context.Context, customer Customer) error
	Delete(ctx context.Context, orgID, id int64) error
}
