// ABOUTME: Shared fixtures for the store package tests
// ABOUTME: In-memory range store with small seeded collections
package store

import (
	"time"

	"go.uber.org/zap"

	"sheetcrm/config"
	"sheetcrm/sheets"
)

func testConfig() *config.Config {
	return &config.Config{
		SpreadsheetID: "test",
		Sheets: config.SheetNames{
			Leads:         "leads",
			Contacts:      "contacts",
			Companies:     "companies",
			Opportunities: "opportunities",
			Interactions:  "interactions",
			SystemConfig:  "system",
			EventLogs:     "events",
			OppContacts:   "links",
			Weekly:        "weekly",
			Announcements: "announcements",
			Users:         "users",
		},
		CacheTTL: time.Minute,
		Pagination: config.PageSizes{
			Contacts:      20,
			Opportunities: 10,
			Interactions:  15,
		},
	}
}

type testEnv struct {
	store *sheets.MemStore
	cache *Cache
	cfg   *config.Config
	log   *zap.Logger
}

func newTestEnv() *testEnv {
	return &testEnv{
		store: sheets.NewMemStore(),
		cache: NewCache(time.Minute),
		cfg:   testConfig(),
		log:   zap.NewNop(),
	}
}

func oppHeader() []string {
	return []string{"id", "name", "company", "contact", "phone", "assignee", "type",
		"source", "stage", "created", "close", "value", "status", "drive", "updated",
		"notes", "modifier", "parent"}
}

func oppRow(id, name, company, stage, status, created, updated string) []string {
	row := make([]string, oppWidth)
	row[oppColID] = id
	row[oppColName] = name
	row[oppColCompany] = company
	row[oppColStage] = stage
	row[oppColStatus] = status
	row[oppColCreated] = created
	row[oppColUpdated] = updated
	return row
}
