// ABOUTME: Interaction (activity/audit) sheet reader and writer
// ABOUTME: Interactions are append-mostly; edits overwrite by physical row index
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

// Column layout of the interaction sheet (A:L).
const (
	intColID = iota
	intColOppID
	intColTime
	intColEventType
	intColTitle
	intColSummary
	intColParticipants
	intColNextAction
	intColAttachment
	intColCalendarID
	intColRecorder
	intColCreated
	intWidth
)

const intLastCol = "L"

// InteractionReader serves the cached interaction collection, joined with
// opportunity names for display.
type InteractionReader struct {
	deps
	sheet    string
	pageSize int
	opps     *OpportunityReader
}

// NewInteractionReader wires a reader for the interaction sheet.
func NewInteractionReader(st sheets.RangeStore, cache *Cache, cfg *config.Config, opps *OpportunityReader, log *zap.Logger) *InteractionReader {
	return &InteractionReader{
		deps:     deps{store: st, cache: cache, log: log.Named("interaction-reader")},
		sheet:    cfg.Sheets.Interactions,
		pageSize: cfg.Pagination.Interactions,
		opps:     opps,
	}
}

func parseInteraction(row []string, rowIndex int) models.Interaction {
	return models.Interaction{
		RowIndex:        rowIndex,
		InteractionID:   col(row, intColID),
		OpportunityID:   col(row, intColOppID),
		InteractionTime: col(row, intColTime),
		EventType:       col(row, intColEventType),
		EventTitle:      col(row, intColTitle),
		ContentSummary:  col(row, intColSummary),
		Participants:    col(row, intColParticipants),
		NextAction:      col(row, intColNextAction),
		AttachmentLink:  col(row, intColAttachment),
		CalendarEventID: col(row, intColCalendarID),
		Recorder:        col(row, intColRecorder),
		CreatedTime:     col(row, intColCreated),
	}
}

// All returns every interaction, newest first.
func (r *InteractionReader) All(ctx context.Context) ([]models.Interaction, error) {
	return fetchCached(ctx, r.deps, cacheInteractions, colRange(r.sheet, intLastCol), parseInteraction,
		func(a, b models.Interaction) bool {
			return timeDescLess(a.InteractionTime, b.InteractionTime)
		})
}

// Recent returns up to limit interactions with opportunity names resolved.
func (r *InteractionReader) Recent(ctx context.Context, limit int) ([]models.Interaction, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]models.Interaction, len(all))
	copy(out, all)
	if err := r.resolveNames(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByOpportunity returns the interactions of one opportunity, newest first.
func (r *InteractionReader) ByOpportunity(ctx context.Context, opportunityID string) ([]models.Interaction, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	matched := []models.Interaction{}
	for _, it := range all {
		if it.OpportunityID == opportunityID {
			matched = append(matched, it)
		}
	}
	return matched, nil
}

// Search matches a query against event title, content summary, and the
// resolved opportunity name, then paginates.
func (r *InteractionReader) Search(ctx context.Context, query string, page int) (models.Page[models.Interaction], error) {
	all, err := r.All(ctx)
	if err != nil {
		return models.Page[models.Interaction]{}, err
	}
	items := make([]models.Interaction, len(all))
	copy(items, all)
	if err := r.resolveNames(ctx, items); err != nil {
		return models.Page[models.Interaction]{}, err
	}

	if query != "" {
		term := strings.ToLower(query)
		var matched []models.Interaction
		for _, it := range items {
			if strings.Contains(strings.ToLower(it.EventTitle), term) ||
				strings.Contains(strings.ToLower(it.ContentSummary), term) ||
				strings.Contains(strings.ToLower(it.OpportunityName), term) {
				matched = append(matched, it)
			}
		}
		items = matched
	}
	return models.Paginate(items, page, r.pageSize), nil
}

func (r *InteractionReader) resolveNames(ctx context.Context, items []models.Interaction) error {
	opps, err := r.opps.All(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(opps))
	for _, o := range opps {
		names[o.OpportunityID] = o.OpportunityName
	}
	for i := range items {
		items[i].OpportunityName = names[items[i].OpportunityID]
	}
	return nil
}

// InteractionUpdate is a partial interaction edit; nil fields keep their value.
type InteractionUpdate struct {
	InteractionTime *string
	EventType       *string
	EventTitle      *string
	ContentSummary  *string
	Participants    *string
	NextAction      *string
	AttachmentLink  *string
}

// InteractionWriter mutates the interaction sheet.
type InteractionWriter struct {
	deps
	sheet string
}

// NewInteractionWriter wires a writer for the interaction sheet.
func NewInteractionWriter(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *InteractionWriter {
	return &InteractionWriter{
		deps:  deps{store: st, cache: cache, log: log.Named("interaction-writer")},
		sheet: cfg.Sheets.Interactions,
	}
}

// Create appends an interaction row and returns its generated ID. The
// interaction time defaults to now when the caller leaves it empty.
func (w *InteractionWriter) Create(ctx context.Context, it models.Interaction) (string, error) {
	it.InteractionID = idgen.New(idgen.PrefixInteraction)
	it.CreatedTime = nowStamp()
	if it.InteractionTime == "" {
		it.InteractionTime = it.CreatedTime
	}

	row := make([]string, intWidth)
	row[intColID] = it.InteractionID
	row[intColOppID] = it.OpportunityID
	row[intColTime] = it.InteractionTime
	row[intColEventType] = it.EventType
	row[intColTitle] = it.EventTitle
	row[intColSummary] = it.ContentSummary
	row[intColParticipants] = it.Participants
	row[intColNextAction] = it.NextAction
	row[intColAttachment] = it.AttachmentLink
	row[intColCalendarID] = it.CalendarEventID
	row[intColRecorder] = it.Recorder
	row[intColCreated] = it.CreatedTime

	if _, err := appendAndLocate(ctx, w.store, colRange(w.sheet, intLastCol), row); err != nil {
		return "", fmt.Errorf("failed to create interaction: %w", err)
	}
	w.cache.Invalidate(cacheInteractions)

	w.log.Info("interaction created",
		zap.String("id", it.InteractionID), zap.String("opportunityId", it.OpportunityID))
	return it.InteractionID, nil
}

// Update merges a partial edit onto the row's current remote contents.
func (w *InteractionWriter) Update(ctx context.Context, rowIndex int, upd InteractionUpdate, modifier string) error {
	if err := validateRowIndex(rowIndex); err != nil {
		return err
	}
	rng := rowRange(w.sheet, rowIndex, intLastCol)

	current, err := readCurrentRow(ctx, w.store, rng)
	if err != nil {
		return fmt.Errorf("failed to read interaction row %d: %w", rowIndex, err)
	}

	row := padRow(current, intWidth)
	if upd.InteractionTime != nil {
		row[intColTime] = *upd.InteractionTime
	}
	if upd.EventType != nil {
		row[intColEventType] = *upd.EventType
	}
	if upd.EventTitle != nil {
		row[intColTitle] = *upd.EventTitle
	}
	if upd.ContentSummary != nil {
		row[intColSummary] = *upd.ContentSummary
	}
	if upd.Participants != nil {
		row[intColParticipants] = *upd.Participants
	}
	if upd.NextAction != nil {
		row[intColNextAction] = *upd.NextAction
	}
	if upd.AttachmentLink != nil {
		row[intColAttachment] = *upd.AttachmentLink
	}
	row[intColRecorder] = modifier

	if err := w.store.UpdateRange(ctx, rng, [][]string{row}); err != nil {
		return fmt.Errorf("failed to update interaction row %d: %w", rowIndex, err)
	}
	w.cache.Invalidate(cacheInteractions)
	w.log.Info("interaction updated", zap.Int("rowIndex", rowIndex), zap.String("modifier", modifier))
	return nil
}
