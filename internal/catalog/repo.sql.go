package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

const itemColumns = `id, organization_id, pricelist_id, sku, name, unit, loose_buy_price, pack_buy_price, pack_size, sell_price, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) ListPricelists(ctx context.Context, orgID int64) ([]Pricelist, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, name, currency, created_at, updated_at
		FROM pricelists
		WHERE organization_id = $1
		ORDER BY name, id
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []Pricelist
	for rows.Next() {
		var list Pricelist
		if err := rows.Scan(&list.ID, &list.OrganizationID, &list.Name, &list.Currency, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

func (r *PGRepository) GetPricelist(ctx context.Context, orgID, id int64) (*Pricelist, error) {
	var list Pricelist
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, name, currency, created_at, updated_at
		FROM pricelists
		WHERE organization_id = $1 AND id = $2
	`, orgID, id).Scan(&list.ID, &list.OrganizationID, &list.Name, &list.Currency, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &list, nil
}

func (r *PGRepository) CreatePricelist(ctx context.Context, list Pricelist) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO pricelists (organization_id, name, currency)
		VALUES ($1, $2, $3)
		RETURNING id
	`, list.OrganizationID, list.Name, list.Currency).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: pricelist %q", httpx.ErrDuplicate, list.Name)
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) UpdatePricelist(ctx context.Context, list Pricelist) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pricelists
		SET name = $3, currency = $4, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, list.OrganizationID, list.ID, list.Name, list.Currency)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) DeletePricelist(ctx context.Context, orgID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pricelists WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ListItems(ctx context.Context, orgID, pricelistID int64, req ListItemsRequest) ([]Item, int, error) {
	where := `WHERE organization_id = $1 AND pricelist_id = $2`
	args := []any{orgID, pricelistID}
	if req.Search != "" {
		where += ` AND (sku ILIKE '%' || $3 || '%' OR name ILIKE '%' || $3 || '%')`
		args = append(args, req.Search)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pricelist_items `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM pricelist_items %s ORDER BY sku, id LIMIT $%d OFFSET $%d`,
		itemColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *PGRepository) GetItem(ctx context.Context, orgID, id int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM pricelist_items
		WHERE organization_id = $1 AND id = $2
	`, orgID, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) CreateItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO pricelist_items (organization_id, pricelist_id, sku, name, unit, loose_buy_price, pack_buy_price, pack_size, sell_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, item.OrganizationID, item.PricelistID, item.SKU, item.Name, item.Unit,
		item.LooseBuyPrice, item.PackBuyPrice, item.PackSize, item.SellPrice).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: sku %q", httpx.ErrDuplicate, item.SKU)
		}
		return 0, err
	}
	return id, nil
}

func (r *PGRepository) UpdateItem(ctx context.Context, item Item) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pricelist_items
		SET sku = $3, name = $4, unit = $5, loose_buy_price = $6, pack_buy_price = $7,
		    pack_size = $8, sell_price = $9, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`, item.OrganizationID, item.ID, item.SKU, item.Name, item.Unit,
		item.LooseBuyPrice, item.PackBuyPrice, item.PackSize, item.SellPrice)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: sku %q", httpx.ErrDuplicate, item.SKU)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) DeleteItem(ctx context.Context, orgID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pricelist_items WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// InsertItems bulk-inserts imported rows in one transaction. Either the whole
// file lands or none of it does.
func (r *PGRepository) InsertItems(ctx context.Context, items []Item) (int, error) {
	count := 0
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, item := range items {
			_, err := tx.Exec(ctx, `
				INSERT INTO pricelist_items (organization_id, pricelist_id, sku, name, unit, loose_buy_price, pack_buy_price, pack_size, sell_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (pricelist_id, sku) DO UPDATE
				SET name = EXCLUDED.name, unit = EXCLUDED.unit,
				    loose_buy_price = EXCLUDED.loose_buy_price,
				    pack_buy_price = EXCLUDED.pack_buy_price,
				    pack_size = EXCLUDED.pack_size,
				    sell_price = EXCLUDED.sell_price,
				    updated_at = NOW()
			`, item.OrganizationID, item.PricelistID, item.SKU, item.Name, item.Unit,
				item.LooseBuyPrice, item.PackBuyPrice, item.PackSize, item.SellPrice)
			if err != nil {
				return fmt.Errorf("insert item %s: %w", item.SKU, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(
		&item.ID,
		&item.OrganizationID,
		&item.PricelistID,
		&item.SKU,
		&item.Name,
		&item.Unit,
		&item.LooseBuyPrice,
		&item.PackBuyPrice,
		&item.PackSize,
		&item.SellPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

var _ Repository = (*PGRepository)(nil)
