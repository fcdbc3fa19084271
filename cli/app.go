// ABOUTME: Application container wiring readers, writers, and services
// ABOUTME: Built once at startup; every command pulls its collaborators from here
package cli

import (
	"go.uber.org/zap"

	"sheetcrm/config"
	"sheetcrm/dashboard"
	"sheetcrm/sheets"
	"sheetcrm/store"
	"sheetcrm/workflow"
)

// App bundles every constructed component behind one startup path so
// commands share the same cache registry and journal.
type App struct {
	Config *config.Config
	Cache  *store.Cache

	Opportunities    *store.OpportunityReader
	OpportunityWrite *store.OpportunityWriter
	Contacts         *store.ContactReader
	ContactWrite     *store.ContactWriter
	Companies        *store.CompanyReader
	CompanyWrite     *store.CompanyWriter
	Interactions     *store.InteractionReader
	InteractionWrite *store.InteractionWriter
	EventLogs        *store.EventLogReader
	EventLogWrite    *store.EventLogWriter
	Weekly           *store.WeeklyReader
	WeeklyWrite      *store.WeeklyWriter
	Announcements    *store.AnnouncementReader
	AnnouncementWr   *store.AnnouncementWriter
	System           *store.SystemReader

	Workflow  *workflow.Orchestrator
	Dashboard *dashboard.Service
	Journal   *workflow.Journal
}

// BuildApp wires the full component graph over one RangeStore.
func BuildApp(st sheets.RangeStore, cfg *config.Config, journal *workflow.Journal, log *zap.Logger) *App {
	cache := store.NewCache(cfg.CacheTTL)

	companies := store.NewCompanyReader(st, cache, cfg, log)
	contacts := store.NewContactReader(st, cache, cfg, companies, log)
	opps := store.NewOpportunityReader(st, cache, cfg, log)
	interactions := store.NewInteractionReader(st, cache, cfg, opps, log)
	eventLogs := store.NewEventLogReader(st, cache, cfg, opps, log)
	weekly := store.NewWeeklyReader(st, cache, cfg, log)
	announcements := store.NewAnnouncementReader(st, cache, cfg, log)
	system := store.NewSystemReader(st, cache, cfg, log)

	companyWrite := store.NewCompanyWriter(st, cache, cfg, log)
	contactWrite := store.NewContactWriter(st, cache, cfg, contacts, log)
	oppWrite := store.NewOpportunityWriter(st, cache, cfg, log)
	interactionWrite := store.NewInteractionWriter(st, cache, cfg, log)
	eventLogWrite := store.NewEventLogWriter(st, cache, cfg, log)
	weeklyWrite := store.NewWeeklyWriter(st, cache, cfg, log)
	announcementWrite := store.NewAnnouncementWriter(st, cache, cfg, log)

	orchestrator := workflow.New(workflow.Deps{
		Contacts:      contacts,
		ContactWriter: contactWrite,
		Companies:     companyWrite,
		Opportunities: oppWrite,
		Interactions:  interactionWrite,
		Journal:       journal,
		Log:           log,
	})

	dash := dashboard.New(dashboard.Readers{
		Opportunities: opps,
		Contacts:      contacts,
		Companies:     companies,
		Interactions:  interactions,
		EventLogs:     eventLogs,
		Weekly:        weekly,
		System:        system,
	}, log)

	return &App{
		Config:           cfg,
		Cache:            cache,
		Opportunities:    opps,
		OpportunityWrite: oppWrite,
		Contacts:         contacts,
		ContactWrite:     contactWrite,
		Companies:        companies,
		CompanyWrite:     companyWrite,
		Interactions:     interactions,
		InteractionWrite: interactionWrite,
		EventLogs:        eventLogs,
		EventLogWrite:    eventLogWrite,
		Weekly:           weekly,
		WeeklyWrite:      weeklyWrite,
		Announcements:    announcements,
		AnnouncementWr:   announcementWrite,
		System:           system,
		Workflow:         orchestrator,
		Dashboard:        dash,
		Journal:          journal,
	}
}
