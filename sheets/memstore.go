// ABOUTME: In-memory RangeStore used by tests across packages
// ABOUTME: Implements A1 range addressing, append, overwrite, and row-shift deletes
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/api/googleapi"
)

// MemStore is an in-memory spreadsheet. Each tab is a slice of rows whose
// index 0 is the physical header row (row 1). Call counters let tests assert
// cache and invalidation behavior. Tabs that were never set behave like
// missing sheets: reads fail with the same shape of error the real API
// returns for an unparseable range.
type MemStore struct {
	mu   sync.Mutex
	tabs map[string][][]string

	GetCalls    map[string]int
	AppendCalls map[string]int
	UpdateCalls map[string]int
	DeleteCalls map[string]int
	BatchCalls  int

	// FailAppend forces the next appends on a tab to fail, for exercising
	// best-effort write paths.
	FailAppend map[string]error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		tabs:        make(map[string][][]string),
		GetCalls:    make(map[string]int),
		AppendCalls: make(map[string]int),
		UpdateCalls: make(map[string]int),
		DeleteCalls: make(map[string]int),
		FailAppend:  make(map[string]error),
	}
}

var _ RangeStore = (*MemStore)(nil)

// SetTab replaces the full contents of a tab, header row included.
func (m *MemStore) SetTab(name string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	m.tabs[name] = copied
}

// Rows returns a copy of a tab's current rows.
func (m *MemStore) Rows(name string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tabs[name]
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	return copied
}

func (m *MemStore) GetRange(_ context.Context, rng string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref, err := parseA1(rng)
	if err != nil {
		return nil, err
	}
	m.GetCalls[ref.tab]++

	rows, ok := m.tabs[ref.tab]
	if !ok {
		return nil, rangeUnavailable(rng)
	}

	first, last := 1, len(rows)
	if ref.startRow > 0 {
		first = ref.startRow
		last = ref.endRow
		if last == 0 {
			last = ref.startRow
		}
	}

	var out [][]string
	for r := first; r <= last && r <= len(rows); r++ {
		row := rows[r-1]
		end := ref.endCol + 1
		if end > len(row) {
			end = len(row)
		}
		if ref.startCol >= end {
			out = append(out, []string{})
			continue
		}
		out = append(out, append([]string(nil), row[ref.startCol:end]...))
	}
	return out, nil
}

func (m *MemStore) AppendRow(_ context.Context, rng string, row []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref, err := parseA1(rng)
	if err != nil {
		return "", err
	}
	m.AppendCalls[ref.tab]++

	if failErr, ok := m.FailAppend[ref.tab]; ok && failErr != nil {
		return "", failErr
	}
	if _, ok := m.tabs[ref.tab]; !ok {
		return "", rangeUnavailable(rng)
	}

	m.tabs[ref.tab] = append(m.tabs[ref.tab], append([]string(nil), row...))
	n := len(m.tabs[ref.tab])
	return fmt.Sprintf("'%s'!A%d:%s%d", ref.tab, n, colLetter(ref.endCol), n), nil
}

func (m *MemStore) UpdateRange(_ context.Context, rng string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.update(rng, rows)
}

func (m *MemStore) BatchUpdate(_ context.Context, updates []RangeUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchCalls++
	for _, u := range updates {
		if err := m.update(u.Range, u.Rows); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemStore) DeleteRow(_ context.Context, sheetName string, rowIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls[sheetName]++

	rows, ok := m.tabs[sheetName]
	if !ok {
		return rangeUnavailable(sheetName)
	}
	if rowIndex < 1 || rowIndex > len(rows) {
		return fmt.Errorf("row %d out of bounds for %s", rowIndex, sheetName)
	}
	m.tabs[sheetName] = append(rows[:rowIndex-1], rows[rowIndex:]...)
	return nil
}

func (m *MemStore) update(rng string, rows [][]string) error {
	ref, err := parseA1(rng)
	if err != nil {
		return err
	}
	m.UpdateCalls[ref.tab]++

	tab, ok := m.tabs[ref.tab]
	if !ok {
		return rangeUnavailable(rng)
	}
	if ref.startRow < 1 {
		return fmt.Errorf("update needs a row-qualified range, got %s", rng)
	}

	for i, newRow := range rows {
		r := ref.startRow + i
		for r > len(tab) {
			tab = append(tab, []string{})
		}
		row := tab[r-1]
		for j, cell := range newRow {
			c := ref.startCol + j
			for c >= len(row) {
				row = append(row, "")
			}
			row[c] = cell
		}
		tab[r-1] = row
	}
	m.tabs[ref.tab] = tab
	return nil
}

func rangeUnavailable(rng string) error {
	return &googleapi.Error{Code: 400, Message: "Unable to parse range: " + rng}
}

type a1Ref struct {
	tab      string
	startCol int
	endCol   int
	startRow int // 0 means whole columns
	endRow   int // 0 means single row (or unbounded when startRow is 0)
}

func parseA1(rng string) (a1Ref, error) {
	bang := strings.LastIndex(rng, "!")
	if bang < 0 {
		return a1Ref{}, fmt.Errorf("range %q has no sheet qualifier", rng)
	}
	tab := strings.Trim(rng[:bang], "'")
	ref := rng[bang+1:]

	parts := strings.SplitN(ref, ":", 2)
	c1, r1, err := parseCell(parts[0])
	if err != nil {
		return a1Ref{}, fmt.Errorf("bad range %q: %w", rng, err)
	}
	c2, r2 := c1, 0
	if len(parts) == 2 {
		c2, r2, err = parseCell(parts[1])
		if err != nil {
			return a1Ref{}, fmt.Errorf("bad range %q: %w", rng, err)
		}
	}
	return a1Ref{tab: tab, startCol: c1, endCol: c2, startRow: r1, endRow: r2}, nil
}

func parseCell(s string) (colIdx, row int, err error) {
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		colIdx = colIdx*26 + int(s[i]-'A') + 1
		i++
	}
	if colIdx == 0 {
		return 0, 0, fmt.Errorf("no column letters in %q", s)
	}
	colIdx--
	if i < len(s) {
		row, err = strconv.Atoi(s[i:])
		if err != nil {
			return 0, 0, fmt.Errorf("bad row number in %q", s)
		}
	}
	return colIdx, row, nil
}

func colLetter(idx int) string {
	letters := ""
	idx++
	for idx > 0 {
		idx--
		letters = string(rune('A'+idx%26)) + letters
		idx /= 26
	}
	return letters
}
