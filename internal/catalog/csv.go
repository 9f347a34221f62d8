package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
)

// Expected CSV header. Column order is fixed; the column-mapping UI, if any,
// reorders on the client side before upload.
var csvHeader = []string{"sku", "name", "unit", "loose_buy_price", "pack_buy_price", "pack_size", "sell_price"}

func parseItemsCSV(r io.Reader, orgID, pricelistID int64) ([]Item, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: empty or unreadable csv", httpx.ErrValidation)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var items []Item
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: row %d is malformed", httpx.ErrValidation, line)
		}

		payload := ItemPayload{
			SKU:           strings.TrimSpace(record[0]),
			Name:          strings.TrimSpace(record[1]),
			Unit:          strings.TrimSpace(record[2]),
			LooseBuyPrice: strings.TrimSpace(record[3]),
			SellPrice:     strings.TrimSpace(record[6]),
		}
		if v := strings.TrimSpace(record[4]); v != "" {
			payload.PackBuyPrice = &v
		}
		if v := strings.TrimSpace(record[5]); v != "" {
			payload.PackSize = &v
		}
		if payload.SKU == "" || payload.Name == "" {
			return nil, fmt.Errorf("%w: row %d misses sku or name", httpx.ErrValidation, line)
		}

		item, err := payload.toItem(orgID, pricelistID)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: csv contains no rows", httpx.ErrValidation)
	}
	return items, nil
}

func checkHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return fmt.Errorf("%w: expected columns %s", httpx.ErrValidation, strings.Join(csvHeader, ","))
	}
	for i, col := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return fmt.Errorf("%w: expected column %d to be %s", httpx.ErrValidation, i+1, col)
		}
	}
	return nil
}
