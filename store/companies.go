// ABOUTME: Company master sheet reader and writer
// ABOUTME: Get-or-create by normalized name backs the promote workflow
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sheetcrm/config"
	"sheetcrm/idgen"
	"sheetcrm/models"
	"sheetcrm/sheets"
)

// Column layout of the company master sheet (A:J). Parsing and row building
// both reference these, so the two can never drift apart.
const (
	comColID = iota
	comColName
	comColPhone
	comColAddress
	comColCreated
	comColUpdated
	comColCounty
	comColCreator
	comColModifier
	comColIntro
	comWidth
)

const comLastCol = "J"

// CompanyReader serves the cached company collection.
type CompanyReader struct {
	deps
	sheet string
}

// NewCompanyReader wires a reader for the company master sheet.
func NewCompanyReader(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *CompanyReader {
	return &CompanyReader{
		deps:  deps{store: st, cache: cache, log: log.Named("company-reader")},
		sheet: cfg.Sheets.Companies,
	}
}

func parseCompany(row []string, rowIndex int) models.Company {
	return models.Company{
		RowIndex:       rowIndex,
		CompanyID:      col(row, comColID),
		CompanyName:    col(row, comColName),
		Phone:          col(row, comColPhone),
		Address:        col(row, comColAddress),
		CreatedTime:    col(row, comColCreated),
		LastUpdateTime: col(row, comColUpdated),
		County:         col(row, comColCounty),
		Creator:        col(row, comColCreator),
		LastModifier:   col(row, comColModifier),
		Introduction:   col(row, comColIntro),
	}
}

// All returns every company row, cached.
func (r *CompanyReader) All(ctx context.Context) ([]models.Company, error) {
	return fetchCached(ctx, r.deps, cacheCompanies, colRange(r.sheet, comLastCol), parseCompany, nil)
}

// CompanyRef identifies a resolved company inside a workflow.
type CompanyRef struct {
	ID       string
	Name     string
	RowIndex int
}

// ContactSource carries the free-text contact details used to seed new
// company and contact rows. LeadRowIndex is non-zero when the data came from
// a lead row rather than manual input.
type ContactSource struct {
	LeadRowIndex int
	Name         string
	Company      string
	Position     string
	Department   string
	Phone        string
	Mobile       string
	Email        string
	Address      string
}

// CompanyUpdate is a partial company edit; nil fields keep their value.
type CompanyUpdate struct {
	Phone        *string
	Address      *string
	County       *string
	Introduction *string
}

// CompanyWriter mutates the company master sheet.
type CompanyWriter struct {
	deps
	sheet string
}

// NewCompanyWriter wires a writer for the company master sheet.
func NewCompanyWriter(st sheets.RangeStore, cache *Cache, cfg *config.Config, log *zap.Logger) *CompanyWriter {
	return &CompanyWriter{
		deps:  deps{store: st, cache: cache, log: log.Named("company-writer")},
		sheet: cfg.Sheets.Companies,
	}
}

// GetOrCreate resolves a company by case- and whitespace-normalized exact
// name, appending a new row seeded from the contact's details when no match
// exists. Two concurrent calls with the same fresh name can race and both
// append; the backing store has no unique constraint to stop them, so
// duplicates are reconciled manually if that ever happens.
func (w *CompanyWriter) GetOrCreate(ctx context.Context, companyName string, src ContactSource, county, modifier string) (CompanyRef, error) {
	rng := colRange(w.sheet, comLastCol)
	existing, err := findRowByValue(ctx, w.store, rng, comColName, companyName)
	if err != nil {
		return CompanyRef{}, err
	}
	if existing != nil {
		w.log.Info("company already exists", zap.String("name", companyName))
		return CompanyRef{
			ID:       col(existing.row, comColID),
			Name:     col(existing.row, comColName),
			RowIndex: existing.rowIndex,
		}, nil
	}

	phone := src.Phone
	if phone == "" {
		phone = src.Mobile
	}
	now := nowStamp()
	id := idgen.New(idgen.PrefixCompany)

	row := make([]string, comWidth)
	row[comColID] = id
	row[comColName] = companyName
	row[comColPhone] = phone
	row[comColAddress] = src.Address
	row[comColCreated] = now
	row[comColUpdated] = now
	row[comColCounty] = county
	row[comColCreator] = modifier
	row[comColModifier] = modifier

	rowIndex, err := appendAndLocate(ctx, w.store, rng, row)
	if err != nil {
		return CompanyRef{}, fmt.Errorf("failed to create company %s: %w", companyName, err)
	}
	w.cache.Invalidate(cacheCompanies)

	w.log.Info("company created",
		zap.String("id", id), zap.String("name", companyName), zap.String("modifier", modifier))
	return CompanyRef{ID: id, Name: companyName, RowIndex: rowIndex}, nil
}

// Update merges a partial edit onto the company's current remote row.
func (w *CompanyWriter) Update(ctx context.Context, companyName string, upd CompanyUpdate, modifier string) error {
	rng := colRange(w.sheet, comLastCol)
	found, err := findRowByValue(ctx, w.store, rng, comColName, companyName)
	if err != nil {
		return err
	}
	if found == nil {
		return fmt.Errorf("company %s: %w", companyName, ErrNotFound)
	}

	row := padRow(found.row, comWidth)
	if upd.Phone != nil {
		row[comColPhone] = *upd.Phone
	}
	if upd.Address != nil {
		row[comColAddress] = *upd.Address
	}
	if upd.County != nil {
		row[comColCounty] = *upd.County
	}
	if upd.Introduction != nil {
		row[comColIntro] = *upd.Introduction
	}
	row[comColUpdated] = nowStamp()
	row[comColModifier] = modifier

	if err := w.store.UpdateRange(ctx, rowRange(w.sheet, found.rowIndex, comLastCol), [][]string{row}); err != nil {
		return fmt.Errorf("failed to update company %s: %w", companyName, err)
	}
	w.cache.Invalidate(cacheCompanies)
	w.log.Info("company updated", zap.String("name", companyName), zap.String("modifier", modifier))
	return nil
}
