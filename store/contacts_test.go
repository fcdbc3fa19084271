// ABOUTME: Tests for lead listing, filed-contact search, and contact writes
// ABOUTME: Company names are joined in memory from the company master
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcrm/models"
)

func leadRow(created, name, company, mobile, status string) []string {
	row := make([]string, leadWidth)
	row[leadColTime] = created
	row[leadColName] = name
	row[leadColCompany] = company
	row[leadColMobile] = mobile
	row[leadColStatus] = status
	return row
}

func seedContactSheets(env *testEnv) {
	header := make([]string, leadWidth)
	header[0] = "time"
	env.store.SetTab("leads", [][]string{
		header,
		leadRow("2026-08-01", "王小明", "台灣科技", "0912-345-678", ""),
		leadRow("2026-08-10", "李大華", "大同股份", "0922-111-222", ""),
		leadRow("2026-08-05", "陳已升", "舊客戶", "0933-000-000", models.LeadStatusUpgraded),
		leadRow("2026-08-03", "", "", "", ""),
	})
	env.store.SetTab("contacts", [][]string{
		{"id", "sourceId", "name", "companyId", "dept", "position", "mobile", "phone", "email", "created", "updated", "creator", "modifier"},
		{"CON001", "BC-9", "王小明", "COM001", "", "經理", "0912-345-678", "", "ming@example.com", "2026-01-01", "2026-01-01", "Alice", "Alice"},
		{"CON002", "MANUAL", "李大華", "COM002", "", "工程師", "0922-111-222", "", "", "2026-02-01", "2026-02-01", "Alice", "Alice"},
	})
	env.store.SetTab("companies", [][]string{
		{"id", "name", "phone", "address", "created", "updated", "county", "creator", "modifier", "intro"},
		{"COM001", "台灣科技", "", "", "", "", "", "", "", ""},
		{"COM002", "大同股份", "", "", "", "", "", "", "", ""},
	})
	env.store.SetTab("links", [][]string{
		{"linkId", "oppId", "contactId", "created", "status", "creator"},
		{"LNK001", "OPP001", "CON001", "2026-03-01", "active", "Alice"},
		{"LNK002", "OPP001", "CON002", "2026-03-02", "removed", "Alice"},
	})
}

func newContactReader(env *testEnv) *ContactReader {
	companies := NewCompanyReader(env.store, env.cache, env.cfg, env.log)
	return NewContactReader(env.store, env.cache, env.cfg, companies, env.log)
}

func TestLeadsExcludesUpgradedAndEmptyRows(t *testing.T) {
	env := newTestEnv()
	seedContactSheets(env)
	r := newContactReader(env)

	leads, err := r.Leads(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, leads, 2)
	// Newest card first.
	assert.Equal(t, "李大華", leads[0].Name)
	assert.Equal(t, "王小明", leads[1].Name)
}

func TestLeadByRowIndex(t *testing.T) {
	env := newTestEnv()
	seedContactSheets(env)
	r := newContactReader(env)
	ctx := context.Background()

	lead, err := r.LeadByRowIndex(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "王小明", lead.Name)
	assert.Equal(t, "0912-345-678", lead.Mobile)

	// The upgraded lead is not addressable through the active view.
	gone, err := r.LeadByRowIndex(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSearchFiledJoinsCompanyNames(t *testing.T) {
	env := newTestEnv()
	seedContactSheets(env)
	r := newContactReader(env)

	result, err := r.SearchFiled(context.Background(), "大同", 1)
	require.NoError(t, err)

	require.Len(t, result.Data, 1)
	assert.Equal(t, "李大華", result.Data[0].Name)
	assert.Equal(t, "大同股份", result.Data[0].CompanyName)
}

func TestLinkedContactsHonorsLinkStatus(t *testing.T) {
	env := newTestEnv()
	seedContactSheets(env)
	r := newContactReader(env)

	linked, err := r.LinkedContacts(context.Background(), "OPP001")
	require.NoError(t, err)

	require.Len(t, linked, 1)
	assert.Equal(t, "CON001", linked[0].ContactID)
	assert.Equal(t, "台灣科技", linked[0].CompanyName)
}

func TestContactGetOrCreateMatchesNameAndCompany(t *testing.T) {
	env := newTestEnv()
	seedContactSheets(env)
	r := newContactReader(env)
	w := NewContactWriter(env.store, env.cache, env.cfg, r, env.log)
	ctx := context.Background()

	ref, err := w.GetOrCreate(ctx, ContactSource{Name: "王小明"}, CompanyRef{ID: "COM001"}, "Bob")
	require.NoError(t, err)
	assert.Equal(t, "CON001", ref.ID)
	assert.Equal(t, 0, env.store.AppendCalls["contacts"])

	// Same name at a different company is a different person.
	other, err := w.GetOrCreate(ctx, ContactSource{Name: "王小明", LeadRowIndex: 2}, CompanyRef{ID: "COM002"}, "Bob")
	require.NoError(t, err)
	assert.NotEqual(t, "CON001", other.ID)
	assert.Equal(t, 1, env.store.AppendCalls["contacts"])

	created := env.store.Rows("contacts")[3]
	assert.Equal(t, "BC-2", created[conColSourceID])
	assert.Equal(t, "COM002", created[conColCompanyID])
}

func TestSetLeadStatusTouchesOnlyStatusCell(t *testing.T) {
	env := newTestEnv()
	seedContactSheets(env)
	r := newContactReader(env)
	w := NewContactWriter(env.store, env.cache, env.cfg, r, env.log)

	require.NoError(t, w.SetLeadStatus(context.Background(), 2, models.LeadStatusUpgraded))

	row := env.store.Rows("leads")[1]
	assert.Equal(t, models.LeadStatusUpgraded, row[leadColStatus])
	assert.Equal(t, "王小明", row[leadColName], "other cells must be untouched")
}
