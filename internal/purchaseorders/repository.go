package purchaseorders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository persists purchase orders. WithTx hands the callback a repository
// bound to one transaction so a line mutation and the aggregate re-sum commit
// together.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

	Get(ctx context.Context, orgID, id int64) (*PurchaseOrder, error)
	List(ctx context.Context, orgID int64, req ListRequest) ([]PurchaseOrder, int, error)
	Create(ctx context.Context, order PurchaseOrder) (int64, error)
	UpdateHeader(ctx context.Context, order PurchaseOrder) error
	UpdateStatus(ctx context.Context, orgID, id int64, status Status) error
	Delete(ctx context.Context, orgID, id int64) error

	GetLines(ctx context.Context, orderID int64) ([]Line, error)
	GetLine(ctx context.Context, orderID, lineID int64) (*Line, error)
	InsertLine(ctx context.Context, line Line) (int64, error)
	UpdateLine(ctx context.Context, line Line) error
	DeleteLine(ctx context.Context, orderID, lineID int64) error
	UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) error

	GenerateNumber(ctx context.Context, orgID int64, date time.Time) (string, error)
}
