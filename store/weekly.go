// ABOUTME: Weekly business record sheet reader and writer
// ABOUTME: Rows carry a derived ISO week identifier used for board grouping
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sheetcrm/config"
	"sheetcrm/idgen"
	"sheetcrm/models"
	"sheetcrm/sheets"
)

// Column layout of the weekly business sheet (A:K).
const (
	wkColDate = iota
	wkColWeekID
	wkColCategory
	wkColTopic
	wkColParticipants
	wkColSummary
	wkColActions
	wkColCreated
	wkColUpdated
	wkColCreator
	wkColRecordID
	wkWidth
)

const wkLastCol = "K"

// WeekID derives the ISO week identifier ("2026-W35") of a date.
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeeklyReader serves the cached weekly business collection.
type WeeklyReader struct {
	deps
	sheet    string
	pageSize int
}

// NewWeeklyReader wires a reader for the weekly business sheet.
func NewWeeklyReader(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *WeeklyReader {
	return &WeeklyReader{
		deps:     deps{store: st, cache: cache, log: log.Named("weekly-reader")},
		sheet:    cfg.Sheets.Weekly,
		pageSize: cfg.Pagination.Interactions,
	}
}

func parseWeeklyEntry(row []string, rowIndex int) models.WeeklyEntry {
	e := models.WeeklyEntry{
		RowIndex:       rowIndex,
		Date:           col(row, wkColDate),
		WeekID:         col(row, wkColWeekID),
		Category:       col(row, wkColCategory),
		Topic:          col(row, wkColTopic),
		Participants:   col(row, wkColParticipants),
		Summary:        col(row, wkColSummary),
		ActionItems:    col(row, wkColActions),
		CreatedTime:    col(row, wkColCreated),
		LastUpdateTime: col(row, wkColUpdated),
		Creator:        col(row, wkColCreator),
		RecordID:       col(row, wkColRecordID),
	}
	if t, ok := parseWhen(e.Date); ok {
		if wd := int(t.Weekday()); wd >= 1 && wd <= 5 {
			e.Day = wd
		}
	}
	return e
}

// All returns every weekly entry, newest date first.
func (r *WeeklyReader) All(ctx context.Context) ([]models.WeeklyEntry, error) {
	return fetchCached(ctx, r.deps, cacheWeekly, colRange(r.sheet, wkLastCol), parseWeeklyEntry,
		func(a, b models.WeeklyEntry) bool {
			return timeDescLess(a.Date, b.Date)
		})
}

// ByWeek returns the entries of one ISO week, grouped for the Monday-to-
// Friday board. Entries falling on a weekend keep Day zero and are dropped.
func (r *WeeklyReader) ByWeek(ctx context.Context, weekID string) (map[int][]models.WeeklyEntry, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	byDay := map[int][]models.WeeklyEntry{}
	for _, e := range all {
		if e.WeekID == weekID && e.Day != 0 {
			byDay[e.Day] = append(byDay[e.Day], e)
		}
	}
	return byDay, nil
}

// WeekOption describes one selectable board week.
type WeekOption struct {
	WeekID     string `json:"weekId"`
	Start      string `json:"start"`
	End        string `json:"end"`
	HasEntries bool   `json:"hasEntries"`
}

// WeekOptions returns the previous, current, and next board weeks relative
// to now, each with its Monday-to-Friday date range and whether any entry
// already exists in it.
func (r *WeeklyReader) WeekOptions(ctx context.Context, now time.Time) ([]WeekOption, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, e := range all {
		seen[e.WeekID] = true
	}

	// Monday of the current ISO week.
	monday := now
	for monday.Weekday() != time.Monday {
		monday = monday.AddDate(0, 0, -1)
	}

	opts := make([]WeekOption, 0, 3)
	for _, offset := range []int{-7, 0, 7} {
		start := monday.AddDate(0, 0, offset)
		id := WeekID(start)
		opts = append(opts, WeekOption{
			WeekID:     id,
			Start:      start.Format("2006-01-02"),
			End:        start.AddDate(0, 0, 4).Format("2006-01-02"),
			HasEntries: seen[id],
		})
	}
	return opts, nil
}

// Search matches a query against topic, summary, and participants, then
// paginates. An empty query returns all entries paginated.
func (r *WeeklyReader) Search(ctx context.Context, query string, page int) (models.Page[models.WeeklyEntry], error) {
	all, err := r.All(ctx)
	if err != nil {
		return models.Page[models.WeeklyEntry]{}, err
	}

	items := all
	if query != "" {
		term := strings.ToLower(query)
		matched := []models.WeeklyEntry{}
		for _, e := range all {
			if strings.Contains(strings.ToLower(e.Topic), term) ||
				strings.Contains(strings.ToLower(e.Summary), term) ||
				strings.Contains(strings.ToLower(e.Participants), term) {
				matched = append(matched, e)
			}
		}
		items = matched
	}
	return models.Paginate(items, page, r.pageSize), nil
}

// WeeklyWriter mutates the weekly business sheet.
type WeeklyWriter struct {
	deps
	sheet string
}

// NewWeeklyWriter wires a writer for the weekly business sheet.
func NewWeeklyWriter(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *WeeklyWriter {
	return &WeeklyWriter{
		deps:  deps{store: st, cache: cache, log: log.Named("weekly-writer")},
		sheet: cfg.Sheets.Weekly,
	}
}

// Create appends a weekly entry, deriving its week ID from the date, and
// returns the generated record ID.
func (w *WeeklyWriter) Create(ctx context.Context, e models.WeeklyEntry) (string, error) {
	e.RecordID = idgen.New(idgen.PrefixWeekly)
	now := nowStamp()
	e.CreatedTime = now
	e.LastUpdateTime = now
	if t, ok := parseWhen(e.Date); ok {
		e.WeekID = WeekID(t)
	}

	row := make([]string, wkWidth)
	row[wkColDate] = e.Date
	row[wkColWeekID] = e.WeekID
	row[wkColCategory] = e.Category
	row[wkColTopic] = e.Topic
	row[wkColParticipants] = e.Participants
	row[wkColSummary] = e.Summary
	row[wkColActions] = e.ActionItems
	row[wkColCreated] = e.CreatedTime
	row[wkColUpdated] = e.LastUpdateTime
	row[wkColCreator] = e.Creator
	row[wkColRecordID] = e.RecordID

	if _, err := appendAndLocate(ctx, w.store, colRange(w.sheet, wkLastCol), row); err != nil {
		return "", fmt.Errorf("failed to create weekly entry: %w", err)
	}
	w.cache.Invalidate(cacheWeekly)

	w.log.Info("weekly entry created", zap.String("recordId", e.RecordID), zap.String("weekId", e.WeekID))
	return e.RecordID, nil
}

// WeeklyUpdate is a partial weekly-entry edit; nil fields keep their value.
type WeeklyUpdate struct {
	Date         *string
	Category     *string
	Topic        *string
	Participants *string
	Summary      *string
	ActionItems  *string
}

// Update merges a partial edit onto the row's current remote contents. A
// changed date re-derives the week ID so the entry moves boards.
func (w *WeeklyWriter) Update(ctx context.Context, rowIndex int, upd WeeklyUpdate, modifier string) error {
	if err := validateRowIndex(rowIndex); err != nil {
		return err
	}
	rng := rowRange(w.sheet, rowIndex, wkLastCol)

	current, err := readCurrentRow(ctx, w.store, rng)
	if err != nil {
		return fmt.Errorf("failed to read weekly row %d: %w", rowIndex, err)
	}

	row := padRow(current, wkWidth)
	if upd.Date != nil {
		row[wkColDate] = *upd.Date
		if t, ok := parseWhen(*upd.Date); ok {
			row[wkColWeekID] = WeekID(t)
		}
	}
	if upd.Category != nil {
		row[wkColCategory] = *upd.Category
	}
	if upd.Topic != nil {
		row[wkColTopic] = *upd.Topic
	}
	if upd.Participants != nil {
		row[wkColParticipants] = *upd.Participants
	}
	if upd.Summary != nil {
		row[wkColSummary] = *upd.Summary
	}
	if upd.ActionItems != nil {
		row[wkColActions] = *upd.ActionItems
	}
	row[wkColUpdated] = nowStamp()
	row[wkColCreator] = modifier

	if err := w.store.UpdateRange(ctx, rng, [][]string{row}); err != nil {
		return fmt.Errorf("failed to update weekly row %d: %w", rowIndex, err)
	}
	w.cache.Invalidate(cacheWeekly)
	w.log.Info("weekly entry updated", zap.Int("rowIndex", rowIndex), zap.String("modifier", modifier))
	return nil
}

// Delete removes a weekly entry row.
func (w *WeeklyWriter) Delete(ctx context.Context, rowIndex int) error {
	if err := validateRowIndex(rowIndex); err != nil {
		return err
	}
	if err := w.store.DeleteRow(ctx, w.sheet, rowIndex); err != nil {
		return fmt.Errorf("failed to delete weekly row %d: %w", rowIndex, err)
	}
	w.cache.Invalidate(cacheWeekly)
	w.log.Info("weekly entry deleted", zap.Int("rowIndex", rowIndex))
	return nil
}
