package quotes

import (
	"context"
	"time"

	"github.com/tradewind-erp/tradewind/internal/pricing"
)

// Repository persists quotes. WithTx hands the callback a repository bound to
// one transaction so a line mutation and the aggregate re-sum commit together.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

	Get(ctx context.Context, orgID, id int64) (*Quote, error)
	List(ctx context.Context, orgID int64, req ListRequest) ([]Quote, int, error)
	Create(ctx context.Context, quote Quote) (int64, error)
	UpdateHeader(ctx context.Context, quote Quote) error
	UpdateStatus(ctx context.Context, orgID, id int64, status Status) error
	Delete(ctx context.Context, orgID, id int64) error

	GetLines(ctx context.Context, quoteID int64) ([]Line, error)
	GetLine(ctx context.Context, quoteID, lineID int64) (*Line, error)
	InsertLine(ctx context.Context, line Line) (int64, error)
	UpdateLine(ctx context.Context, line Line) error
	DeleteLine(ctx context.Context, quoteID, lineID int64) error
	UpdateTotals(ctx context.Context, id int64, totals pricing.DocumentTotals) error

	GenerateNumber(ctx context.Context, orgID int64, date time.Time) (string, error)
}
