// ABOUTME: Opportunity sheet reader and writer, plus contact-link mutations
// ABOUTME: Row index is the physical address for updates; IDs are the logical identity
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

// Column layout of the opportunity sheet (A:R).
const (
	oppColID = iota
	oppColName
	oppColCompany
	oppColContact
	oppColPhone
	oppColAssignee
	oppColType
	oppColSource
	oppColStage
	oppColCreated
	oppColCloseDate
	oppColValue
	oppColStatus
	oppColDriveLink
	oppColUpdated
	oppColNotes
	oppColModifier
	oppColParent
	oppWidth
)

const oppLastCol = "R"

// OpportunityReader serves the cached opportunity collection.
type OpportunityReader struct {
	deps
	sheet    string
	pageSize int
}

// NewOpportunityReader wires a reader for the opportunity sheet.
func NewOpportunityReader(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *OpportunityReader {
	return &OpportunityReader{
		deps:     deps{store: st, cache: cache, log: log.Named("opportunity-reader")},
		sheet:    cfg.Sheets.Opportunities,
		pageSize: cfg.Pagination.Opportunities,
	}
}

func parseOpportunity(row []string, rowIndex int) models.Opportunity {
	return models.Opportunity{
		RowIndex:            rowIndex,
		OpportunityID:       col(row, oppColID),
		OpportunityName:     col(row, oppColName),
		CustomerCompany:     col(row, oppColCompany),
		MainContact:         col(row, oppColContact),
		ContactPhone:        col(row, oppColPhone),
		Assignee:            col(row, oppColAssignee),
		OpportunityType:     col(row, oppColType),
		OpportunitySource:   col(row, oppColSource),
		CurrentStage:        col(row, oppColStage),
		CreatedTime:         col(row, oppColCreated),
		ExpectedCloseDate:   col(row, oppColCloseDate),
		OpportunityValue:    col(row, oppColValue),
		CurrentStatus:       col(row, oppColStatus),
		DriveFolderLink:     col(row, oppColDriveLink),
		LastUpdateTime:      col(row, oppColUpdated),
		Notes:               col(row, oppColNotes),
		LastModifier:        col(row, oppColModifier),
		ParentOpportunityID: col(row, oppColParent),
	}
}

func opportunityRow(o models.Opportunity) []string {
	row := make([]string, oppWidth)
	row[oppColID] = o.OpportunityID
	row[oppColName] = o.OpportunityName
	row[oppColCompany] = o.CustomerCompany
	row[oppColContact] = o.MainContact
	row[oppColPhone] = o.ContactPhone
	row[oppColAssignee] = o.Assignee
	row[oppColType] = o.OpportunityType
	row[oppColSource] = o.OpportunitySource
	row[oppColStage] = o.CurrentStage
	row[oppColCreated] = o.CreatedTime
	row[oppColCloseDate] = o.ExpectedCloseDate
	row[oppColValue] = o.OpportunityValue
	row[oppColStatus] = o.CurrentStatus
	row[oppColDriveLink] = o.DriveFolderLink
	row[oppColUpdated] = o.LastUpdateTime
	row[oppColNotes] = o.Notes
	row[oppColModifier] = o.LastModifier
	row[oppColParent] = o.ParentOpportunityID
	return row
}

// All returns every non-archived opportunity, newest activity first.
func (r *OpportunityReader) All(ctx context.Context) ([]models.Opportunity, error) {
	all, err := fetchCached(ctx, r.deps, cacheOpportunities, colRange(r.sheet, oppLastCol), parseOpportunity,
		func(a, b models.Opportunity) bool {
			ta := a.LastUpdateTime
			if ta == "" {
				ta = a.CreatedTime
			}
			tb := b.LastUpdateTime
			if tb == "" {
				tb = b.CreatedTime
			}
			return timeDescLess(ta, tb)
		})
	if err != nil {
		return nil, err
	}

	active := []models.Opportunity{}
	for _, o := range all {
		if o.CurrentStatus != models.OpportunityStatusArchived {
			active = append(active, o)
		}
	}
	return active, nil
}

// ByID finds one opportunity in the cached collection. Returns nil when no
// row carries the ID.
func (r *OpportunityReader) ByID(ctx context.Context, opportunityID string) (*models.Opportunity, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].OpportunityID == opportunityID {
			return &all[i], nil
		}
	}
	return nil, nil
}

// OpportunityFilters narrow a search to equality matches on single fields.
type OpportunityFilters struct {
	Assignee string
	Type     string
	Stage    string
}

// Search matches a query against opportunity name and customer company
// (or exactly against an opportunity ID when the query looks like one),
// applies the filters, and paginates.
func (r *OpportunityReader) Search(ctx context.Context, query string, page int, filters OpportunityFilters) (models.Page[models.Opportunity], error) {
	opps, err := r.All(ctx)
	if err != nil {
		return models.Page[models.Opportunity]{}, err
	}

	if query != "" {
		term := strings.ToLower(query)
		var matched []models.Opportunity
		for _, o := range opps {
			if strings.HasPrefix(term, "opp") && strings.EqualFold(o.OpportunityID, query) {
				matched = append(matched, o)
				continue
			}
			if strings.Contains(strings.ToLower(o.OpportunityName), term) ||
				strings.Contains(strings.ToLower(o.CustomerCompany), term) {
				matched = append(matched, o)
			}
		}
		opps = matched
	}

	filtered := opps[:0:0]
	for _, o := range opps {
		if filters.Assignee != "" && o.Assignee != filters.Assignee {
			continue
		}
		if filters.Type != "" && o.OpportunityType != filters.Type {
			continue
		}
		if filters.Stage != "" && o.CurrentStage != filters.Stage {
			continue
		}
		filtered = append(filtered, o)
	}

	return models.Paginate(filtered, page, r.pageSize), nil
}

// OpportunityUpdate is a partial opportunity edit; nil fields keep their value.
type OpportunityUpdate struct {
	OpportunityName     *string
	CustomerCompany     *string
	MainContact         *string
	ContactPhone        *string
	Assignee            *string
	OpportunityType     *string
	OpportunitySource   *string
	CurrentStage        *string
	ExpectedCloseDate   *string
	OpportunityValue    *string
	CurrentStatus       *string
	Notes               *string
	ParentOpportunityID *string
}

// StageUpdate is one kanban drag inside a batch stage change.
type StageUpdate struct {
	RowIndex int
	Stage    string
	Modifier string
}

// OpportunityWriter mutates the opportunity sheet and its contact links.
type OpportunityWriter struct {
	deps
	sheet     string
	linkSheet string
}

// NewOpportunityWriter wires a writer for the opportunity sheet.
func NewOpportunityWriter(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *OpportunityWriter {
	return &OpportunityWriter{
		deps:      deps{store: st, cache: cache, log: log.Named("opportunity-writer")},
		sheet:     cfg.Sheets.Opportunities,
		linkSheet: cfg.Sheets.OppContacts,
	}
}

// Create appends a full opportunity row, generating its ID and stamping both
// timestamps, and returns the stored record with its physical row index.
func (w *OpportunityWriter) Create(ctx context.Context, o models.Opportunity) (models.Opportunity, error) {
	now := nowStamp()
	o.OpportunityID = idgen.New(idgen.PrefixOpportunity)
	o.CreatedTime = now
	o.LastUpdateTime = now
	if o.CurrentStage == "" {
		o.CurrentStage = models.DefaultOpportunityStage
	}
	if o.CurrentStatus == "" {
		o.CurrentStatus = models.OpportunityStatusActive
	}

	rowIndex, err := appendAndLocate(ctx, w.store, colRange(w.sheet, oppLastCol), opportunityRow(o))
	if err != nil {
		return models.Opportunity{}, fmt.Errorf("failed to create opportunity: %w", err)
	}
	o.RowIndex = rowIndex
	w.cache.Invalidate(cacheOpportunities)

	w.log.Info("opportunity created",
		zap.String("id", o.OpportunityID), zap.String("name", o.OpportunityName))
	return o, nil
}

// Current reads the live contents of one opportunity row, bypassing the
// cache. Used where a mutation needs the pre-write state, e.g. to detect a
// stage change.
func (w *OpportunityWriter) Current(ctx context.Context, rowIndex int) (models.Opportunity, error) {
	if err := validateRowIndex(rowIndex); err != nil {
		return models.Opportunity{}, err
	}
	row, err := readCurrentRow(ctx, w.store, rowRange(w.sheet, rowIndex, oppLastCol))
	if err != nil {
		return models.Opportunity{}, fmt.Errorf("failed to read opportunity row %d: %w", rowIndex, err)
	}
	return parseOpportunity(row, rowIndex), nil
}

// Update merges a partial edit onto the row's current remote contents. The
// read-before-write keeps concurrent edits from being overwritten with stale
// cached data.
func (w *OpportunityWriter) Update(ctx context.Context, rowIndex int, upd OpportunityUpdate, modifier string) (models.Opportunity, error) {
	if err := validateRowIndex(rowIndex); err != nil {
		return models.Opportunity{}, err
	}
	rng := rowRange(w.sheet, rowIndex, oppLastCol)

	current, err := readCurrentRow(ctx, w.store, rng)
	if err != nil {
		return models.Opportunity{}, fmt.Errorf("failed to read opportunity row %d: %w", rowIndex, err)
	}

	row := padRow(current, oppWidth)
	if upd.OpportunityName != nil {
		row[oppColName] = *upd.OpportunityName
	}
	if upd.CustomerCompany != nil {
		row[oppColCompany] = *upd.CustomerCompany
	}
	if upd.MainContact != nil {
		row[oppColContact] = *upd.MainContact
	}
	if upd.ContactPhone != nil {
		row[oppColPhone] = *upd.ContactPhone
	}
	if upd.Assignee != nil {
		row[oppColAssignee] = *upd.Assignee
	}
	if upd.OpportunityType != nil {
		row[oppColType] = *upd.OpportunityType
	}
	if upd.OpportunitySource != nil {
		row[oppColSource] = *upd.OpportunitySource
	}
	if upd.CurrentStage != nil {
		row[oppColStage] = *upd.CurrentStage
	}
	if upd.ExpectedCloseDate != nil {
		row[oppColCloseDate] = *upd.ExpectedCloseDate
	}
	if upd.OpportunityValue != nil {
		row[oppColValue] = *upd.OpportunityValue
	}
	if upd.CurrentStatus != nil {
		row[oppColStatus] = *upd.CurrentStatus
	}
	if upd.Notes != nil {
		row[oppColNotes] = *upd.Notes
	}
	if upd.ParentOpportunityID != nil {
		row[oppColParent] = *upd.ParentOpportunityID
	}
	row[oppColUpdated] = nowStamp()
	row[oppColModifier] = modifier

	if err := w.store.UpdateRange(ctx, rng, [][]string{row}); err != nil {
		return models.Opportunity{}, fmt.Errorf("failed to update opportunity row %d: %w", rowIndex, err)
	}
	w.cache.Invalidate(cacheOpportunities)

	updated := parseOpportunity(row, rowIndex)
	w.log.Info("opportunity updated",
		zap.Int("rowIndex", rowIndex), zap.String("id", updated.OpportunityID), zap.String("modifier", modifier))
	return updated, nil
}

// UpdateStages reads each target row, applies its stage change, and submits
// all overwrites as one batched call. The batch amortizes round trips but is
// not atomic: rows whose read failed are skipped and counted as failures,
// and a failing batch can leave a prefix of rows updated.
func (w *OpportunityWriter) UpdateStages(ctx context.Context, updates []StageUpdate) (succeeded, failed int, err error) {
	var batch []sheets.RangeUpdate
	for _, u := range updates {
		rng := rowRange(w.sheet, u.RowIndex, oppLastCol)
		current, readErr := readCurrentRow(ctx, w.store, rng)
		if readErr != nil {
			w.log.Warn("skipping stage update, row unreadable",
				zap.Int("rowIndex", u.RowIndex), zap.Error(readErr))
			failed++
			continue
		}
		row := padRow(current, oppWidth)
		row[oppColStage] = u.Stage
		row[oppColUpdated] = nowStamp()
		row[oppColModifier] = u.Modifier
		batch = append(batch, sheets.RangeUpdate{Range: rng, Rows: [][]string{row}})
	}

	if len(batch) == 0 {
		return 0, failed, nil
	}
	if err := w.store.BatchUpdate(ctx, batch); err != nil {
		return 0, len(updates), fmt.Errorf("failed to batch update stages: %w", err)
	}
	w.cache.Invalidate(cacheOpportunities)
	w.log.Info("batch stage update done", zap.Int("succeeded", len(batch)), zap.Int("failed", failed))
	return len(batch), failed, nil
}

// Delete removes the opportunity row. The server shifts every subsequent row
// up by one, so callers must drop any row index they held for this
// collection and re-fetch before addressing it again.
func (w *OpportunityWriter) Delete(ctx context.Context, rowIndex int, modifier string) error {
	if err := validateRowIndex(rowIndex); err != nil {
		return err
	}
	if err := w.store.DeleteRow(ctx, w.sheet, rowIndex); err != nil {
		return fmt.Errorf("failed to delete opportunity row %d: %w", rowIndex, err)
	}
	w.cache.Invalidate(cacheOpportunities)
	w.log.Info("opportunity deleted", zap.Int("rowIndex", rowIndex), zap.String("modifier", modifier))
	return nil
}

// LinkContact appends an active association row between an opportunity and a
// filed contact and returns the new link's ID.
func (w *OpportunityWriter) LinkContact(ctx context.Context, opportunityID, contactID, modifier string) (string, error) {
	linkID := idgen.New(idgen.PrefixLink)
	row := make([]string, linkWidth)
	row[linkColID] = linkID
	row[linkColOppID] = opportunityID
	row[linkColContactID] = contactID
	row[linkColCreated] = nowStamp()
	row[linkColStatus] = models.LinkStatusActive
	row[linkColCreator] = modifier

	if _, err := appendAndLocate(ctx, w.store, colRange(w.linkSheet, linkLastCol), row); err != nil {
		return "", fmt.Errorf("failed to link contact %s to opportunity %s: %w", contactID, opportunityID, err)
	}
	w.cache.Invalidate(cacheLinks)

	w.log.Info("contact linked",
		zap.String("linkId", linkID), zap.String("opportunityId", opportunityID), zap.String("contactId", contactID))
	return linkID, nil
}

// UnlinkContact hard-deletes the association row between an opportunity and
// a contact. The row index is resolved immediately before the delete so an
// earlier shift cannot make it target the wrong row.
func (w *OpportunityWriter) UnlinkContact(ctx context.Context, opportunityID, contactID string) error {
	rows, err := w.store.GetRange(ctx, colRange(w.linkSheet, linkLastCol))
	if err != nil {
		return fmt.Errorf("failed to scan contact links: %w", err)
	}

	for i := 1; i < len(rows); i++ {
		if col(rows[i], linkColOppID) == opportunityID && col(rows[i], linkColContactID) == contactID {
			rowIndex := i + 1
			if err := w.store.DeleteRow(ctx, w.linkSheet, rowIndex); err != nil {
				return fmt.Errorf("failed to delete link row %d: %w", rowIndex, err)
			}
			w.cache.Invalidate(cacheLinks)
			w.log.Info("contact unlinked",
				zap.String("opportunityId", opportunityID), zap.String("contactId", contactID), zap.Int("rowIndex", rowIndex))
			return nil
		}
	}
	return fmt.Errorf("link %s/%s: %w", opportunityID, contactID, ErrNotFound)
}
