package catalog

import "context"

// Repository defines persistence operations for the catalog module. Every
// operation is scoped by organization ID; the scope comes from the tenancy
// gate, never from client input.
type Repository interface {
	ListPricelists(ctx context.Context, orgID int64) ([]Pricelist, error)
	GetPricelist(ctx context.Context, orgID, id int64) (*Pricelist, error)
	CreatePricelist(ctx context.Context, list Pricelist) (int64, error)
	UpdatePricelist(ctx context.Context, list Pricelist) error
	DeletePricelist(ctx context.Context, orgID, id int64) error

	ListItems(ctx context.Context, orgID, pricelistID int64, req ListItemsRequest) ([]Item, int, error)
	GetItem(ctx context.Context, orgID, id int64) (*Item, error)
	CreateItem(ctx context.Context, item Item) (int64, error)
	UpdateItem(ctx context.Context, item Item) error
	DeleteItem(ctx context.Context, orgID, id int64) error
	InsertItems(ctx context.Context, items []Item) (int, error)
}
