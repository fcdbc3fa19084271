// ABOUTME: Generic write-path helpers shared by every entity writer
// ABOUTME: Row building, append-and-locate, timestamp stamping
package store

import (
	"context"
	"fmt"
	"time"

	"sheetcrm/sheets"
)

// nowStamp is the timestamp format written into created/updated columns.
// Pre-existing rows carry ISO-8601 strings, so new writes match it.
func nowStamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// padRow extends a row to the full column width of its sheet so positional
// writes past the row's current length land on the right column.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// appendAndLocate appends a row and recovers the 1-based physical row index
// of the new row from the store's updated-range response.
func appendAndLocate(ctx context.Context, st sheets.RangeStore, rng string, row []string) (int, error) {
	updatedRange, err := st.AppendRow(ctx, rng, row)
	if err != nil {
		return 0, err
	}
	rowIndex, err := sheets.ParseRowIndex(updatedRange)
	if err != nil {
		return 0, fmt.Errorf("append succeeded but row address is unreadable: %w", err)
	}
	return rowIndex, nil
}

// rowRange addresses one full-width row of a tab, e.g. "'tab'!A7:R7".
func rowRange(sheetName string, rowIndex int, lastCol string) string {
	return fmt.Sprintf("'%s'!A%d:%s%d", sheetName, rowIndex, lastCol, rowIndex)
}

// colRange addresses a whole tab by its column span, e.g. "'tab'!A:R".
func colRange(sheetName, lastCol string) string {
	return fmt.Sprintf("'%s'!A:%s", sheetName, lastCol)
}

// readCurrentRow fetches the live contents of one row so partial updates
// merge onto current remote data rather than a possibly stale cache.
func readCurrentRow(ctx context.Context, st sheets.RangeStore, rng string) ([]string, error) {
	rows, err := st.GetRange(ctx, rng)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no data at %s", ErrNotFound, rng)
	}
	return rows[0], nil
}
