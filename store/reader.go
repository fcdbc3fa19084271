// ABOUTME: Generic read path shared by every entity reader
// ABOUTME: Cache-or-fetch, row parsing, linear row lookup, time sorting
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"sheetcrm/sheets"
)

// deps bundles what every reader and writer needs: the remote store, the
// shared cache registry, and a logger.
type deps struct {
	store sheets.RangeStore
	cache *Cache
	log   *zap.Logger
}

// fetchCached returns the collection for key from cache when still valid,
// otherwise fetches the full range, drops the header row, parses every data
// row (row i of the slice lives at physical row i+2), sorts when a
// comparison is given, caches and returns. A range that does not exist
// remotely yields an empty collection, not an error.
func fetchCached[T any](ctx context.Context, d deps, key, rng string, parse func(row []string, rowIndex int) T, less func(a, b T) bool) ([]T, error) {
	if cached, ok := d.cache.Get(key); ok {
		if data, ok := cached.([]T); ok {
			d.log.Debug("cache hit", zap.String("collection", key))
			return data, nil
		}
	}

	d.log.Info("fetching collection from remote store", zap.String("collection", key))
	rows, err := d.store.GetRange(ctx, rng)
	if err != nil {
		if sheets.IsRangeUnavailable(err) {
			d.log.Warn("range unavailable, treating as empty collection",
				zap.String("collection", key), zap.String("range", rng))
			return []T{}, nil
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}

	data := []T{}
	if len(rows) > 1 {
		data = make([]T, 0, len(rows)-1)
		for i, row := range rows[1:] {
			data = append(data, parse(row, i+2))
		}
	}

	if less != nil {
		sort.SliceStable(data, func(i, j int) bool { return less(data[i], data[j]) })
	}

	d.cache.Put(key, data)
	return data, nil
}

// foundRow is a raw row located by findRowByValue, addressed by its current
// 1-based physical position. The index is only good until the next deletion
// in the same collection.
type foundRow struct {
	row      []string
	rowIndex int
}

// findRowByValue scans the current remote range for the first data row whose
// column matches value, case-insensitively and ignoring surrounding
// whitespace. The scan deliberately bypasses the cache so writers locate
// rows against live data. O(n) per call; collections stay in the hundreds of
// rows. Returns nil when nothing matches.
func findRowByValue(ctx context.Context, st sheets.RangeStore, rng string, columnIndex int, value string) (*foundRow, error) {
	rows, err := st.GetRange(ctx, rng)
	if err != nil {
		if sheets.IsRangeUnavailable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan %s: %w", rng, err)
	}

	want := strings.TrimSpace(value)
	for i := 1; i < len(rows); i++ {
		if strings.EqualFold(strings.TrimSpace(col(rows[i], columnIndex)), want) {
			return &foundRow{row: rows[i], rowIndex: i + 1}, nil
		}
	}
	return nil, nil
}

// col reads a cell by index, tolerating rows the store returned short of the
// full column width.
func col(row []string, i int) string {
	if i >= 0 && i < len(row) {
		return row[i]
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// parseWhen leniently parses the timestamp formats found in sheet cells.
func parseWhen(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timeDescLess orders newest first; rows with unparseable timestamps sink to
// the end, matching how existing consumers expect mixed data to sort.
func timeDescLess(a, b string) bool {
	ta, okA := parseWhen(a)
	tb, okB := parseWhen(b)
	if !okA {
		return false
	}
	if !okB {
		return true
	}
	return ta.After(tb)
}
