package orgs

import "context"

// Repository persists organizations and subscriptions.
type Repository interface {
	List(ctx context.Context, req ListRequest) ([]Organization, int, error)
	Get(ctx context.Context, id int64) (*Organization, error)
	Create(ctx context.Context, org Organization) (int64, error)
	Update(ctx context.Context, org Organization) error
	Delete(ctx context.Context, id int64) error

	GetSubscription(ctx context.Context, orgID int64) (*Subscription, error)
	UpsertSubscription(ctx context.Context, sub Subscription) error
}
