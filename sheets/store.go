// ABOUTME: RangeStore capability interface over the remote tabular store
// ABOUTME: Google Sheets implementation with per-client sheet-ID caching
package sheets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"
)

// RangeUpdate is one row overwrite inside a batch.
type RangeUpdate struct {
	Range string
	Rows  [][]string
}

// RangeStore is the capability the data layer needs from the backing store:
// rectangular reads, row appends, row-range overwrites, batched overwrites,
// and row deletion. Implementations own their own latency and failure modes;
// the data layer adds no retry policy on top.
type RangeStore interface {
	// GetRange returns all rows of a range, header included.
	GetRange(ctx context.Context, rng string) ([][]string, error)

	// AppendRow appends one row after the last data row of the range and
	// returns the updated range string, which encodes the physical row
	// address of the new row (recover it with ParseRowIndex).
	AppendRow(ctx context.Context, rng string, row []string) (string, error)

	// UpdateRange overwrites the cells of a range with the given rows.
	UpdateRange(ctx context.Context, rng string, rows [][]string) error

	// BatchUpdate submits several row overwrites in one round trip. Not
	// atomic: a partial failure can leave some rows updated and others not.
	BatchUpdate(ctx context.Context, updates []RangeUpdate) error

	// DeleteRow removes the 1-based row of a sheet tab. Every subsequent
	// row shifts up by one; any previously held row index for that tab is
	// stale afterwards.
	DeleteRow(ctx context.Context, sheetName string, rowIndex int) error
}

// Client is the Sheets-backed RangeStore for one spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewClient wraps an authenticated Sheets service for one spreadsheet.
func NewClient(svc *sheets.Service, spreadsheetID string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}
}

var _ RangeStore = (*Client)(nil)

func (c *Client) GetRange(ctx context.Context, rng string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rng, err)
	}
	return toStringRows(resp.Values), nil
}

func (c *Client) AppendRow(ctx context.Context, rng string, row []string) (string, error) {
	body := &sheets.ValueRange{Values: [][]interface{}{toCells(row)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to append row to %s: %w", rng, err)
	}
	if resp.Updates == nil {
		return "", fmt.Errorf("append to %s returned no update metadata", rng)
	}
	return resp.Updates.UpdatedRange, nil
}

func (c *Client) UpdateRange(ctx context.Context, rng string, rows [][]string) error {
	body := &sheets.ValueRange{Values: toCellRows(rows)}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", rng, err)
	}
	return nil
}

func (c *Client) BatchUpdate(ctx context.Context, updates []RangeUpdate) error {
	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{Range: u.Range, Values: toCellRows(u.Rows)})
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}
	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to batch update %d ranges: %w", len(updates), err)
	}
	return nil
}

func (c *Client) DeleteRow(ctx context.Context, sheetName string, rowIndex int) error {
	sheetID, err := c.resolveSheetID(ctx, sheetName)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex - 1),
					EndIndex:   int64(rowIndex),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete row %d of %s: %w", rowIndex, sheetName, err)
	}
	return nil
}

// resolveSheetID maps a tab name to its numeric sheet ID, caching the answer
// for the lifetime of the client.
func (c *Client) resolveSheetID(ctx context.Context, sheetName string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[sheetName]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title,sheets.properties.sheetId").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve sheet id for %s: %w", sheetName, err)
	}

	for _, s := range resp.Sheets {
		if s.Properties != nil && s.Properties.Title == sheetName {
			c.mu.Lock()
			c.sheetIDs[sheetName] = s.Properties.SheetId
			c.mu.Unlock()
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("no sheet named %q in spreadsheet", sheetName)
}

var rowIndexPattern = regexp.MustCompile(`!A(\d+)`)

// ParseRowIndex recovers the 1-based row number from an updated-range string
// such as "'機會案件工作表'!A7:R7".
func ParseRowIndex(updatedRange string) (int, error) {
	m := rowIndexPattern.FindStringSubmatch(updatedRange)
	if m == nil {
		return 0, fmt.Errorf("cannot parse row index from range %q", updatedRange)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("cannot parse row index from range %q: %w", updatedRange, err)
	}
	return n, nil
}

// IsRangeUnavailable reports whether an error means the named sheet or range
// does not exist remotely. Readers treat this as an empty collection so
// optional tabs can be absent without breaking every caller.
func IsRangeUnavailable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 400 && strings.Contains(gerr.Message, "Unable to parse range")
	}
	return false
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

func toCellRows(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = toCells(r)
	}
	return out
}

func toStringRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, r := range values {
		row := make([]string, len(r))
		for j, cell := range r {
			row[j] = fmt.Sprint(cell)
		}
		rows[i] = row
	}
	return rows
}
