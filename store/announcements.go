// ABOUTME: Bulletin-board announcement sheet reader and writer
// ABOUTME: Published ordering is pinned entries first, then recency
package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sheetcrm/config"
	"sheetcrm/idgen"
	"sheetcrm/models"
	"sheetcrm/sheets"
)

// Column layout of the announcement sheet (A:H).
const (
	annColID = iota
	annColTitle
	annColContent
	annColCreator
	annColCreated
	annColUpdated
	annColStatus
	annColPinned
	annWidth
)

const annLastCol = "H"

// AnnouncementReader serves the cached announcement collection.
type AnnouncementReader struct {
	deps
	sheet string
}

// NewAnnouncementReader wires a reader for the announcement sheet.
func NewAnnouncementReader(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *AnnouncementReader {
	return &AnnouncementReader{
		deps:  deps{store: st, cache: cache, log: log.Named("announcement-reader")},
		sheet: cfg.Sheets.Announcements,
	}
}

func parseAnnouncement(row []string, rowIndex int) models.Announcement {
	return models.Announcement{
		RowIndex:       rowIndex,
		ID:             col(row, annColID),
		Title:          col(row, annColTitle),
		Content:        col(row, annColContent),
		Creator:        col(row, annColCreator),
		CreatedTime:    col(row, annColCreated),
		LastUpdateTime: col(row, annColUpdated),
		Status:         col(row, annColStatus),
		IsPinned:       strings.EqualFold(strings.TrimSpace(col(row, annColPinned)), "true"),
	}
}

// Published returns the published announcements, pinned entries first and
// newest first within each group.
func (r *AnnouncementReader) Published(ctx context.Context) ([]models.Announcement, error) {
	all, err := fetchCached(ctx, r.deps, cacheAnnouncements, colRange(r.sheet, annLastCol), parseAnnouncement,
		func(a, b models.Announcement) bool {
			if a.IsPinned != b.IsPinned {
				return a.IsPinned
			}
			return timeDescLess(a.CreatedTime, b.CreatedTime)
		})
	if err != nil {
		return nil, err
	}

	published := []models.Announcement{}
	for _, a := range all {
		if a.Status == models.AnnouncementStatusPublished {
			published = append(published, a)
		}
	}
	return published, nil
}

// pinnedFlag renders the pinned column the way the workbook stores booleans.
func pinnedFlag(p bool) string {
	if p {
		return "TRUE"
	}
	return "FALSE"
}

// AnnouncementWriter mutates the announcement sheet.
type AnnouncementWriter struct {
	deps
	sheet string
}

// NewAnnouncementWriter wires a writer for the announcement sheet.
func NewAnnouncementWriter(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *AnnouncementWriter {
	return &AnnouncementWriter{
		deps:  deps{store: st, cache: cache, log: log.Named("announcement-writer")},
		sheet: cfg.Sheets.Announcements,
	}
}

// Create appends a published announcement and returns its generated ID.
func (w *AnnouncementWriter) Create(ctx context.Context, title, content, creator string, pinned bool) (string, error) {
	id := idgen.New(idgen.PrefixAnnouncement)
	now := nowStamp()

	row := make([]string, annWidth)
	row[annColID] = id
	row[annColTitle] = title
	row[annColContent] = content
	row[annColCreator] = creator
	row[annColCreated] = now
	row[annColUpdated] = now
	row[annColStatus] = models.AnnouncementStatusPublished
	row[annColPinned] = pinnedFlag(pinned)

	if _, err := appendAndLocate(ctx, w.store, colRange(w.sheet, annLastCol), row); err != nil {
		return "", fmt.Errorf("failed to create announcement: %w", err)
	}
	w.cache.Invalidate(cacheAnnouncements)

	w.log.Info("announcement created", zap.String("id", id), zap.Bool("pinned", pinned))
	return id, nil
}

// AnnouncementUpdate is a partial announcement edit; nil fields keep their
// value.
type AnnouncementUpdate struct {
	Title    *string
	Content  *string
	IsPinned *bool
}

// Update edits an announcement addressed by its ID. The row is located by an
// uncached scan immediately before the write.
func (w *AnnouncementWriter) Update(ctx context.Context, id string, upd AnnouncementUpdate, modifier string) error {
	found, err := findRowByValue(ctx, w.store, colRange(w.sheet, annLastCol), annColID, id)
	if err != nil {
		return fmt.Errorf("failed to locate announcement %s: %w", id, err)
	}
	if found == nil {
		return fmt.Errorf("announcement %s: %w", id, ErrNotFound)
	}

	row := padRow(found.row, annWidth)
	if upd.Title != nil {
		row[annColTitle] = *upd.Title
	}
	if upd.Content != nil {
		row[annColContent] = *upd.Content
	}
	if upd.IsPinned != nil {
		row[annColPinned] = pinnedFlag(*upd.IsPinned)
	}
	row[annColUpdated] = nowStamp()
	row[annColCreator] = modifier

	if err := w.store.UpdateRange(ctx, rowRange(w.sheet, found.rowIndex, annLastCol), [][]string{row}); err != nil {
		return fmt.Errorf("failed to update announcement %s: %w", id, err)
	}
	w.cache.Invalidate(cacheAnnouncements)
	w.log.Info("announcement updated", zap.String("id", id))
	return nil
}

// Delete hard-deletes an announcement addressed by its ID.
func (w *AnnouncementWriter) Delete(ctx context.Context, id string) error {
	found, err := findRowByValue(ctx, w.store, colRange(w.sheet, annLastCol), annColID, id)
	if err != nil {
		return fmt.Errorf("failed to locate announcement %s: %w", id, err)
	}
	if found == nil {
		return fmt.Errorf("announcement %s: %w", id, ErrNotFound)
	}
	if err := w.store.DeleteRow(ctx, w.sheet, found.rowIndex); err != nil {
		return fmt.Errorf("failed to delete announcement %s: %w", id, err)
	}
	w.cache.Invalidate(cacheAnnouncements)
	w.log.Info("announcement deleted", zap.String("id", id), zap.Int("rowIndex", found.rowIndex))
	return nil
}
