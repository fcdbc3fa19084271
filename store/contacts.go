// ABOUTME: Readers and writer for leads, filed contacts, and contact links
// ABOUTME: Leads live in the business-card sheet; filed contacts in the master sheet
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

// Column layout of the business-card (lead) sheet (A:Y). Only a subset is
// surfaced; the remaining columns belong to the card-scanning pipeline and
// pass through untouched.
const (
	leadColTime = iota
	leadColName
	leadColCompany
	leadColPosition
	leadColDepartment
	leadColPhone
	leadColMobile
	leadColFax
	leadColEmail
	leadColWebsite
	leadColAddress
	leadColConfidence
	_ // processing time
	leadColDriveLink
	leadColStatus = 24
	leadWidth     = 25
)

const leadLastCol = "Y"

// Column layout of the filed-contact master sheet (A:M).
const (
	conColID = iota
	conColSourceID
	conColName
	conColCompanyID
	conColDepartment
	conColPosition
	conColMobile
	conColPhone
	conColEmail
	conColCreated
	conColUpdated
	conColCreator
	conColModifier
	conWidth
)

const conLastCol = "M"

// Column layout of the opportunity-contact association sheet (A:F).
const (
	linkColID = iota
	linkColOppID
	linkColContactID
	linkColCreated
	linkColStatus
	linkColCreator
	linkWidth
)

const linkLastCol = "F"

// ContactReader serves leads, filed contacts, and the association rows that
// tie contacts to opportunities.
type ContactReader struct {
	deps
	leadSheet string
	conSheet  string
	linkSheet string
	pageSize  int
	companies *CompanyReader
}

// NewContactReader wires a reader over the three contact-related sheets.
// The company reader is injected for in-memory name joins.
func NewContactReader(st sheets.RangeStore, cache *Cache, cfg *config.Config, companies *CompanyReader, log *zap.Logger) *ContactReader {
	return &ContactReader{
		deps:      deps{store: st, cache: cache, log: log.Named("contact-reader")},
		leadSheet: cfg.Sheets.Leads,
		conSheet:  cfg.Sheets.Contacts,
		linkSheet: cfg.Sheets.OppContacts,
		pageSize:  cfg.Pagination.Contacts,
		companies: companies,
	}
}

func parseLead(row []string, rowIndex int) models.Lead {
	return models.Lead{
		RowIndex:    rowIndex,
		CreatedTime: col(row, leadColTime),
		Name:        col(row, leadColName),
		Company:     col(row, leadColCompany),
		Position:    col(row, leadColPosition),
		Department:  col(row, leadColDepartment),
		Phone:       col(row, leadColPhone),
		Mobile:      col(row, leadColMobile),
		Email:       col(row, leadColEmail),
		Website:     col(row, leadColWebsite),
		Address:     col(row, leadColAddress),
		Confidence:  col(row, leadColConfidence),
		DriveLink:   col(row, leadColDriveLink),
		Status:      col(row, leadColStatus),
	}
}

func parseContact(row []string, rowIndex int) models.Contact {
	return models.Contact{
		RowIndex:       rowIndex,
		ContactID:      col(row, conColID),
		SourceID:       col(row, conColSourceID),
		Name:           col(row, conColName),
		CompanyID:      col(row, conColCompanyID),
		Department:     col(row, conColDepartment),
		Position:       col(row, conColPosition),
		Mobile:         col(row, conColMobile),
		Phone:          col(row, conColPhone),
		Email:          col(row, conColEmail),
		CreatedTime:    col(row, conColCreated),
		LastUpdateTime: col(row, conColUpdated),
		Creator:        col(row, conColCreator),
		LastModifier:   col(row, conColModifier),
	}
}

func parseLink(row []string, rowIndex int) models.OppContactLink {
	return models.OppContactLink{
		RowIndex:      rowIndex,
		LinkID:        col(row, linkColID),
		OpportunityID: col(row, linkColOppID),
		ContactID:     col(row, linkColContactID),
		CreatedTime:   col(row, linkColCreated),
		Status:        col(row, linkColStatus),
		Creator:       col(row, linkColCreator),
	}
}

// Leads returns unfiled leads, newest first, excluding rows already upgraded
// and rows with neither a name nor a company. limit <= 0 means no limit.
func (r *ContactReader) Leads(ctx context.Context, limit int) ([]models.Lead, error) {
	all, err := fetchCached(ctx, r.deps, cacheLeads, colRange(r.leadSheet, leadLastCol), parseLead,
		func(a, b models.Lead) bool { return timeDescLess(a.CreatedTime, b.CreatedTime) })
	if err != nil {
		return nil, err
	}

	var leads []models.Lead
	for _, l := range all {
		if l.Name == "" && l.Company == "" {
			continue
		}
		if l.Status == models.LeadStatusUpgraded {
			continue
		}
		leads = append(leads, l)
	}
	if limit > 0 && len(leads) > limit {
		leads = leads[:limit]
	}
	return leads, nil
}

// LeadByRowIndex finds a lead by its physical row address.
func (r *ContactReader) LeadByRowIndex(ctx context.Context, rowIndex int) (*models.Lead, error) {
	leads, err := r.Leads(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range leads {
		if leads[i].RowIndex == rowIndex {
			return &leads[i], nil
		}
	}
	return nil, nil
}

// SearchLeads filters leads by a substring of name or company and paginates.
func (r *ContactReader) SearchLeads(ctx context.Context, query string, page int) (models.Page[models.Lead], error) {
	leads, err := r.Leads(ctx, 0)
	if err != nil {
		return models.Page[models.Lead]{}, err
	}

	if query != "" {
		term := strings.ToLower(query)
		var matched []models.Lead
		for _, l := range leads {
			if strings.Contains(strings.ToLower(l.Name), term) ||
				strings.Contains(strings.ToLower(l.Company), term) {
				matched = append(matched, l)
			}
		}
		leads = matched
	}
	return models.Paginate(leads, page, r.pageSize), nil
}

// Filed returns every filed contact, cached.
func (r *ContactReader) Filed(ctx context.Context) ([]models.Contact, error) {
	return fetchCached(ctx, r.deps, cacheContacts, colRange(r.conSheet, conLastCol), parseContact, nil)
}

// SearchFiled joins filed contacts with their company names in memory, then
// filters by a substring of contact or company name and paginates.
func (r *ContactReader) SearchFiled(ctx context.Context, query string, page int) (models.Page[models.Contact], error) {
	contacts, err := r.Filed(ctx)
	if err != nil {
		return models.Page[models.Contact]{}, err
	}
	companies, err := r.companies.All(ctx)
	if err != nil {
		return models.Page[models.Contact]{}, err
	}

	names := make(map[string]string, len(companies))
	for _, c := range companies {
		names[c.CompanyID] = c.CompanyName
	}

	joined := make([]models.Contact, len(contacts))
	for i, c := range contacts {
		if name, ok := names[c.CompanyID]; ok {
			c.CompanyName = name
		} else {
			c.CompanyName = c.CompanyID
		}
		joined[i] = c
	}

	if query != "" {
		term := strings.ToLower(query)
		var matched []models.Contact
		for _, c := range joined {
			if strings.Contains(strings.ToLower(c.Name), term) ||
				strings.Contains(strings.ToLower(c.CompanyName), term) {
				matched = append(matched, c)
			}
		}
		joined = matched
	}
	return models.Paginate(joined, page, r.pageSize), nil
}

// Links returns every opportunity-contact association row, cached.
func (r *ContactReader) Links(ctx context.Context) ([]models.OppContactLink, error) {
	return fetchCached(ctx, r.deps, cacheLinks, colRange(r.linkSheet, linkLastCol), parseLink, nil)
}

// LinkedContacts resolves the filed contacts actively linked to an
// opportunity, with company names joined in.
func (r *ContactReader) LinkedContacts(ctx context.Context, opportunityID string) ([]models.Contact, error) {
	links, err := r.Links(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool)
	for _, l := range links {
		if l.OpportunityID == opportunityID && l.Status == models.LinkStatusActive {
			wanted[l.ContactID] = true
		}
	}
	if len(wanted) == 0 {
		return []models.Contact{}, nil
	}

	contacts, err := r.Filed(ctx)
	if err != nil {
		return nil, err
	}
	companies, err := r.companies.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(companies))
	for _, c := range companies {
		names[c.CompanyID] = c.CompanyName
	}

	linked := []models.Contact{}
	for _, c := range contacts {
		if !wanted[c.ContactID] {
			continue
		}
		if name, ok := names[c.CompanyID]; ok {
			c.CompanyName = name
		} else {
			c.CompanyName = c.CompanyID
		}
		linked = append(linked, c)
	}
	return linked, nil
}

// ContactRef identifies a resolved filed contact inside a workflow.
type ContactRef struct {
	ID   string
	Name string
}

// ContactUpdate is a partial filed-contact edit; nil fields keep their value.
type ContactUpdate struct {
	Department *string
	Position   *string
	Mobile     *string
	Phone      *string
	Email      *string
}

// ContactWriter mutates the filed-contact master sheet and the lead sheet's
// status column.
type ContactWriter struct {
	deps
	leadSheet string
	conSheet  string
	reader    *ContactReader
}

// NewContactWriter wires a writer over the contact sheets.
func NewContactWriter(st sheets.RangeStore, cache *Cache, cfg *config.Config, reader *ContactReader, log *zap.Logger) *ContactWriter {
	return &ContactWriter{
		deps:      deps{store: st, cache: cache, log: log.Named("contact-writer")},
		leadSheet: cfg.Sheets.Leads,
		conSheet:  cfg.Sheets.Contacts,
		reader:    reader,
	}
}

// GetOrCreate resolves a filed contact by (name, companyID), appending a new
// row when no match exists. The source ID records where the contact came
// from: the lead row for promoted cards, "MANUAL" otherwise.
func (w *ContactWriter) GetOrCreate(ctx context.Context, src ContactSource, company CompanyRef, modifier string) (ContactRef, error) {
	contacts, err := w.reader.Filed(ctx)
	if err != nil {
		return ContactRef{}, err
	}
	for _, c := range contacts {
		if c.Name == src.Name && c.CompanyID == company.ID {
			w.log.Info("contact already exists", zap.String("name", src.Name))
			return ContactRef{ID: c.ContactID, Name: c.Name}, nil
		}
	}

	now := nowStamp()
	id := idgen.New(idgen.PrefixContact)
	sourceID := "MANUAL"
	if src.LeadRowIndex > 0 {
		sourceID = fmt.Sprintf("BC-%d", src.LeadRowIndex)
	}

	row := make([]string, conWidth)
	row[conColID] = id
	row[conColSourceID] = sourceID
	row[conColName] = src.Name
	row[conColCompanyID] = company.ID
	row[conColDepartment] = src.Department
	row[conColPosition] = src.Position
	row[conColMobile] = src.Mobile
	row[conColPhone] = src.Phone
	row[conColEmail] = src.Email
	row[conColCreated] = now
	row[conColUpdated] = now
	row[conColCreator] = modifier
	row[conColModifier] = modifier

	if _, err := appendAndLocate(ctx, w.store, colRange(w.conSheet, conLastCol), row); err != nil {
		return ContactRef{}, fmt.Errorf("failed to create contact %s: %w", src.Name, err)
	}
	w.cache.Invalidate(cacheContacts)

	w.log.Info("contact created",
		zap.String("id", id), zap.String("name", src.Name), zap.String("modifier", modifier))
	return ContactRef{ID: id, Name: src.Name}, nil
}

// Update merges a partial edit onto the contact's current remote row.
func (w *ContactWriter) Update(ctx context.Context, contactID string, upd ContactUpdate, modifier string) error {
	rng := colRange(w.conSheet, conLastCol)
	found, err := findRowByValue(ctx, w.store, rng, conColID, contactID)
	if err != nil {
		return err
	}
	if found == nil {
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}

	row := padRow(found.row, conWidth)
	if upd.Department != nil {
		row[conColDepartment] = *upd.Department
	}
	if upd.Position != nil {
		row[conColPosition] = *upd.Position
	}
	if upd.Mobile != nil {
		row[conColMobile] = *upd.Mobile
	}
	if upd.Phone != nil {
		row[conColPhone] = *upd.Phone
	}
	if upd.Email != nil {
		row[conColEmail] = *upd.Email
	}
	row[conColUpdated] = nowStamp()
	row[conColModifier] = modifier

	if err := w.store.UpdateRange(ctx, rowRange(w.conSheet, found.rowIndex, conLastCol), [][]string{row}); err != nil {
		return fmt.Errorf("failed to update contact %s: %w", contactID, err)
	}
	w.cache.Invalidate(cacheContacts)
	w.log.Info("contact updated", zap.String("id", contactID), zap.String("modifier", modifier))
	return nil
}

// SetLeadStatus writes the status cell of one lead row, e.g. to mark it
// upgraded after promotion. Only the single status cell is touched so the
// card-scanning pipeline's columns stay intact.
func (w *ContactWriter) SetLeadStatus(ctx context.Context, rowIndex int, status string) error {
	if err := validateRowIndex(rowIndex); err != nil {
		return err
	}

	rng := fmt.Sprintf("'%s'!%s%d", w.leadSheet, leadLastCol, rowIndex)
	if err := w.store.UpdateRange(ctx, rng, [][]string{{status}}); err != nil {
		return fmt.Errorf("failed to set lead status at row %d: %w", rowIndex, err)
	}
	w.cache.Invalidate(cacheLeads)
	w.log.Info("lead status updated", zap.Int("rowIndex", rowIndex), zap.String("status", status))
	return nil
}
