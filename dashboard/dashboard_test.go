// ABOUTME: Tests for dashboard aggregation and follow-up selection
// ABOUTME: Pure helpers are tested directly; views over a seeded fake store
package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sheetcrm/config"
	"sheetcrm/models"
	"sheetcrm/sheets"
	"sheetcrm/store"
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

func opp(id, name, stage, status, value, updated string) models.Opportunity {
	return models.Opportunity{
		OpportunityID:    id,
		OpportunityName:  name,
		CurrentStage:     stage,
		CurrentStatus:    status,
		OpportunityValue: value,
		LastUpdateTime:   updated,
	}
}

func TestFollowUpsSelectsStaleEarlyStageOpportunities(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	opps := []models.Opportunity{
		opp("OPP001", "過期案", "01_初步接觸", models.OpportunityStatusActive, "", "2026-08-10"),
		opp("OPP002", "最近案", "01_初步接觸", models.OpportunityStatusActive, "", "2026-08-30"),
		opp("OPP003", "晚期案", "05_成交", models.OpportunityStatusActive, "", "2026-07-01"),
		opp("OPP004", "完結案", "01_初步接觸", models.OpportunityStatusCompleted, "", "2026-07-01"),
		opp("OPP005", "更舊案", "02_需求確認", models.OpportunityStatusActive, "", "2026-08-01"),
	}

	stale := FollowUps(opps, now)

	require.Len(t, stale, 2)
	assert.Equal(t, "OPP005", stale[0].OpportunityID, "most stale first")
	assert.Equal(t, "OPP001", stale[1].OpportunityID)
}

func TestFollowUpsBoundaryIsExactlySevenDays(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	opps := []models.Opportunity{
		opp("OPP001", "剛好七天", "01_初步接觸", models.OpportunityStatusActive, "", "2026-08-24"),
		opp("OPP002", "七天又一日", "01_初步接觸", models.OpportunityStatusActive, "", "2026-08-23"),
	}

	stale := FollowUps(opps, now)
	require.Len(t, stale, 1)
	assert.Equal(t, "OPP002", stale[0].OpportunityID)
}

func TestBuildKanbanFollowsConfiguredStageOrder(t *testing.T) {
	cfg := models.SystemConfig{
		models.StageGroup: {
			{Value: "01_初步接觸", Note: "初步接觸", Order: 1},
			{Value: "02_需求確認", Note: "需求確認", Order: 2},
		},
	}
	opps := []models.Opportunity{
		opp("OPP001", "a", "02_需求確認", models.OpportunityStatusActive, "", ""),
		opp("OPP002", "b", "01_初步接觸", models.OpportunityStatusActive, "", ""),
		opp("OPP003", "c", "01_初步接觸", models.OpportunityStatusCompleted, "", ""),
		opp("OPP004", "d", "98_未設定", models.OpportunityStatusActive, "", ""),
	}

	columns := buildKanban(opps, cfg)

	require.Len(t, columns, 3)
	assert.Equal(t, "初步接觸", columns[0].StageName)
	require.Len(t, columns[0].Opportunities, 1, "completed opportunities stay off the board")
	assert.Equal(t, "需求確認", columns[1].StageName)
	assert.Equal(t, "98_未設定", columns[2].Stage, "unconfigured stages trail the board")
}

func TestBuildStatsSumsParseableValues(t *testing.T) {
	opps := []models.Opportunity{
		opp("OPP001", "a", "", models.OpportunityStatusActive, "NT$1,000,000", ""),
		opp("OPP002", "b", "", models.OpportunityStatusCompleted, "250000", ""),
		opp("OPP003", "c", "", models.OpportunityStatusActive, "未定", ""),
	}

	st := buildStats(opps, make([]models.Lead, 3), make([]models.Company, 2))

	assert.Equal(t, 3, st.TotalOpportunities)
	assert.Equal(t, 2, st.ActiveOpportunities)
	assert.Equal(t, 3, st.PendingLeads)
	assert.Equal(t, 2, st.TotalCompanies)
	assert.Equal(t, "1250000", st.TotalValue)
}

func TestOverviewAggregatesAllSources(t *testing.T) {
	ms := sheets.NewMemStore()
	ms.SetTab("opportunities", [][]string{
		make([]string, 18),
		{"OPP001", "進行中的案子", "台灣科技", "王小明", "", "Alice", "", "", "01_初步接觸", "2026-08-01", "", "100", "進行中", "", "2026-08-30", "", "", ""},
	})
	ms.SetTab("leads", [][]string{make([]string, 25)})
	ms.SetTab("companies", [][]string{
		{"id", "name", "phone", "address", "created", "updated", "county", "creator", "modifier", "intro"},
		{"COM001", "台灣科技", "", "", "", "", "", "", "", ""},
	})
	ms.SetTab("interactions", [][]string{
		make([]string, 12),
		{"INT001", "OPP001", "2026-08-30", "電話", "跟進", "", "", "", "", "", "Alice", "2026-08-30"},
	})
	ms.SetTab("weekly", [][]string{make([]string, 11)})
	ms.SetTab("system", [][]string{
		{"設定類型", "設定項目", "顯示順序", "啟用狀態", "備註"},
		{"機會階段", "01_初步接觸", "1", "TRUE", "初步接觸"},
	})

	cfg := testConfig()
	log := zap.NewNop()
	cache := store.NewCache(cfg.CacheTTL)
	companies := store.NewCompanyReader(ms, cache, cfg, log)
	contacts := store.NewContactReader(ms, cache, cfg, companies, log)
	opps := store.NewOpportunityReader(ms, cache, cfg, log)

	svc := New(Readers{
		Opportunities: opps,
		Contacts:      contacts,
		Companies:     companies,
		Interactions:  store.NewInteractionReader(ms, cache, cfg, opps, log),
		EventLogs:     store.NewEventLogReader(ms, cache, cfg, opps, log),
		Weekly:        store.NewWeeklyReader(ms, cache, cfg, log),
		System:        store.NewSystemReader(ms, cache, cfg, log),
	}, log)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, overview.Stats.TotalOpportunities)
	assert.Equal(t, 1, overview.Stats.ActiveOpportunities)
	assert.Equal(t, 1, overview.Stats.TotalCompanies)
	require.Len(t, overview.Kanban, 1)
	assert.Len(t, overview.Kanban[0].Opportunities, 1)
	require.Len(t, overview.RecentActivity, 1)
	assert.Equal(t, "進行中的案子", overview.RecentActivity[0].OpportunityName)
}

func TestOpportunityDetailsResolvesRelations(t *testing.T) {
	ms := sheets.NewMemStore()
	parent := make([]string, 18)
	parent[0], parent[1], parent[12] = "OPP001", "母案", "進行中"
	child := make([]string, 18)
	child[0], child[1], child[12], child[17] = "OPP002", "子案", "進行中", "OPP001"
	ms.SetTab("opportunities", [][]string{make([]string, 18), parent, child})
	ms.SetTab("interactions", [][]string{
		make([]string, 12),
		{"INT001", "OPP001", "2026-08-01", "電話", "跟進", "", "", "", "", "", "Alice", ""},
	})
	ms.SetTab("events", [][]string{make([]string, 23)})
	ms.SetTab("contacts", [][]string{
		{"id", "sourceId", "name", "companyId", "dept", "position", "mobile", "phone", "email", "created", "updated", "creator", "modifier"},
		{"CON001", "MANUAL", "王小明", "COM001", "", "", "", "", "", "", "", "", ""},
	})
	ms.SetTab("companies", [][]string{
		{"id", "name", "phone", "address", "created", "updated", "county", "creator", "modifier", "intro"},
		{"COM001", "台灣科技", "", "", "", "", "", "", "", ""},
	})
	ms.SetTab("links", [][]string{
		{"linkId", "oppId", "contactId", "created", "status", "creator"},
		{"LNK001", "OPP001", "CON001", "", "active", ""},
	})

	cfg := testConfig()
	log := zap.NewNop()
	cache := store.NewCache(cfg.CacheTTL)
	companies := store.NewCompanyReader(ms, cache, cfg, log)
	contacts := store.NewContactReader(ms, cache, cfg, companies, log)
	opps := store.NewOpportunityReader(ms, cache, cfg, log)

	svc := New(Readers{
		Opportunities: opps,
		Contacts:      contacts,
		Companies:     companies,
		Interactions:  store.NewInteractionReader(ms, cache, cfg, opps, log),
		EventLogs:     store.NewEventLogReader(ms, cache, cfg, opps, log),
		Weekly:        store.NewWeeklyReader(ms, cache, cfg, log),
		System:        store.NewSystemReader(ms, cache, cfg, log),
	}, log)
	ctx := context.Background()

	det, err := svc.OpportunityDetails(ctx, "OPP001")
	require.NoError(t, err)
	require.Len(t, det.Children, 1)
	assert.Equal(t, "OPP002", det.Children[0].OpportunityID)
	require.Len(t, det.Contacts, 1)
	assert.Equal(t, "台灣科技", det.Contacts[0].CompanyName)
	require.Len(t, det.Interactions, 1)

	childDet, err := svc.OpportunityDetails(ctx, "OPP002")
	require.NoError(t, err)
	require.NotNil(t, childDet.Parent)
	assert.Equal(t, "OPP001", childDet.Parent.OpportunityID)

	_, err = svc.OpportunityDetails(ctx, "OPP999")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
