// ABOUTME: Tests for opportunity reads, search, mutations, and links
// ABOUTME: Covers cache behavior, pagination, and the row-shift delete semantics
package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcrm/models"
)

func seedOpportunities(env *testEnv) {
	env.store.SetTab("opportunities", [][]string{
		oppHeader(),
		oppRow("OPP001", "新產線導入", "台灣科技", "01_初步接觸", "進行中", "2026-03-01", "2026-08-01"),
		oppRow("OPP002", "舊案翻新", "大同股份", "03_提案報價", "進行中", "2026-02-01", "2026-08-20"),
		oppRow("OPP003", "封存案", "大同股份", "01_初步接觸", "已封存", "2026-01-01", "2026-01-05"),
		oppRow("OPP004", "年度保固", "台灣科技", "02_需求確認", "已完成", "2026-04-01", ""),
	})
}

func TestAllFiltersArchivedAndSortsByActivity(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	r := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)

	all, err := r.All(context.Background())
	require.NoError(t, err)

	require.Len(t, all, 3)
	// OPP002 has the newest activity; OPP004 falls back to its created time.
	assert.Equal(t, "OPP002", all[0].OpportunityID)
	assert.Equal(t, "OPP001", all[1].OpportunityID)
	assert.Equal(t, "OPP004", all[2].OpportunityID)

	// Physical addresses: data rows start at row 2.
	assert.Equal(t, 3, all[0].RowIndex)
	assert.Equal(t, 2, all[1].RowIndex)
}

func TestAllServesFromCacheWithinTTL(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	r := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)

	_, err := r.All(context.Background())
	require.NoError(t, err)
	_, err = r.All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, env.store.GetCalls["opportunities"])
}

func TestAllRefetchesAfterTTL(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	r := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)

	_, err := r.All(context.Background())
	require.NoError(t, err)

	env.cache.Invalidate(cacheOpportunities)
	_, err = r.All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, env.store.GetCalls["opportunities"])
}

func TestMissingSheetReadsAsEmptyCollection(t *testing.T) {
	env := newTestEnv()
	r := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)

	all, err := r.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSearchMatchesNameCompanyAndID(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	r := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)
	ctx := context.Background()

	byName, err := r.Search(ctx, "產線", 1, OpportunityFilters{})
	require.NoError(t, err)
	require.Len(t, byName.Data, 1)
	assert.Equal(t, "OPP001", byName.Data[0].OpportunityID)

	byCompany, err := r.Search(ctx, "台灣科技", 1, OpportunityFilters{})
	require.NoError(t, err)
	assert.Len(t, byCompany.Data, 2)

	byID, err := r.Search(ctx, "opp002", 1, OpportunityFilters{})
	require.NoError(t, err)
	require.Len(t, byID.Data, 1)
	assert.Equal(t, "OPP002", byID.Data[0].OpportunityID)
}

func TestSearchAppliesEqualityFilters(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	r := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)

	result, err := r.Search(context.Background(), "", 1, OpportunityFilters{Stage: "03_提案報價"})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "OPP002", result.Data[0].OpportunityID)
}

func TestSearchPagination(t *testing.T) {
	env := newTestEnv()
	rows := [][]string{oppHeader()}
	for i := 1; i <= 23; i++ {
		rows = append(rows, oppRow(
			// Ordering is irrelevant here, only the page math.
			fmt.Sprintf("OPP%03d", i), fmt.Sprintf("案件%d", i), "公司", "01_初步接觸", "進行中",
			"2026-01-01", "2026-01-01"))
	}
	env.store.SetTab("opportunities", rows)
	r := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)
	ctx := context.Background()

	first, err := r.Search(ctx, "", 1, OpportunityFilters{})
	require.NoError(t, err)
	assert.Len(t, first.Data, 10)
	assert.Equal(t, 3, first.Pagination.Total)
	assert.Equal(t, 23, first.Pagination.TotalItems)
	assert.True(t, first.Pagination.HasNext)
	assert.False(t, first.Pagination.HasPrev)

	last, err := r.Search(ctx, "", 3, OpportunityFilters{})
	require.NoError(t, err)
	assert.Len(t, last.Data, 3)
	assert.False(t, last.Pagination.HasNext)
	assert.True(t, last.Pagination.HasPrev)

	past, err := r.Search(ctx, "", 4, OpportunityFilters{})
	require.NoError(t, err)
	assert.Empty(t, past.Data)
}

func TestCreateAppendsFullRowAndInvalidates(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	r := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)
	w := NewOpportunityWriter(env.store, env.cache, env.cfg, env.log)
	ctx := context.Background()

	_, err := r.All(ctx)
	require.NoError(t, err)

	created, err := w.Create(ctx, models.Opportunity{
		OpportunityName: "新合作案",
		CustomerCompany: "台灣科技",
	})
	require.NoError(t, err)

	assert.True(t, len(created.OpportunityID) > 3)
	assert.Equal(t, "OPP", created.OpportunityID[:3])
	assert.Equal(t, 6, created.RowIndex)
	assert.Equal(t, models.DefaultOpportunityStage, created.CurrentStage)
	assert.Equal(t, models.OpportunityStatusActive, created.CurrentStatus)
	assert.NotEmpty(t, created.CreatedTime)

	// The write invalidated the cache, so the next read refetches.
	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, env.store.GetCalls["opportunities"])
	assert.Len(t, all, 4)
}

func TestUpdateMergesOntoRemoteRow(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	w := NewOpportunityWriter(env.store, env.cache, env.cfg, env.log)

	stage := "04_談判修正"
	updated, err := w.Update(context.Background(), 3, OpportunityUpdate{CurrentStage: &stage}, "Carol")
	require.NoError(t, err)

	assert.Equal(t, "OPP002", updated.OpportunityID)
	assert.Equal(t, stage, updated.CurrentStage)
	assert.Equal(t, "舊案翻新", updated.OpportunityName, "untouched field must survive")
	assert.Equal(t, "Carol", updated.LastModifier)

	row := env.store.Rows("opportunities")[2]
	assert.Equal(t, stage, row[oppColStage])
}

func TestUpdateRejectsHeaderRow(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	w := NewOpportunityWriter(env.store, env.cache, env.cfg, env.log)

	name := "x"
	_, err := w.Update(context.Background(), 1, OpportunityUpdate{OpportunityName: &name}, "Carol")
	assert.ErrorIs(t, err, ErrInvalidRowIndex)

	_, err = w.Update(context.Background(), 0, OpportunityUpdate{OpportunityName: &name}, "Carol")
	assert.ErrorIs(t, err, ErrInvalidRowIndex)
}

func TestUpdateStagesBatchesIntoOneCall(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	w := NewOpportunityWriter(env.store, env.cache, env.cfg, env.log)

	succeeded, failed, err := w.UpdateStages(context.Background(), []StageUpdate{
		{RowIndex: 2, Stage: "02_需求確認", Modifier: "Carol"},
		{RowIndex: 3, Stage: "04_談判修正", Modifier: "Carol"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 1, env.store.BatchCalls)

	rows := env.store.Rows("opportunities")
	assert.Equal(t, "02_需求確認", rows[1][oppColStage])
	assert.Equal(t, "04_談判修正", rows[2][oppColStage])
}

func TestDeleteShiftsSubsequentRows(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	r := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)
	w := NewOpportunityWriter(env.store, env.cache, env.cfg, env.log)
	ctx := context.Background()

	require.NoError(t, w.Delete(ctx, 2, "Carol"))

	all, err := r.All(ctx)
	require.NoError(t, err)

	for _, o := range all {
		if o.OpportunityID == "OPP002" {
			// Previously at row 3; the delete shifted it up.
			assert.Equal(t, 2, o.RowIndex)
			return
		}
	}
	t.Fatal("OPP002 not found after delete")
}

func TestLinkAndUnlinkContact(t *testing.T) {
	env := newTestEnv()
	env.store.SetTab("links", [][]string{
		{"linkId", "oppId", "contactId", "created", "status", "creator"},
		{"LNK001", "OPP001", "CON001", "2026-01-01", "active", "Alice"},
	})
	w := NewOpportunityWriter(env.store, env.cache, env.cfg, env.log)
	ctx := context.Background()

	linkID, err := w.LinkContact(ctx, "OPP002", "CON002", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "LNK", linkID[:3])
	assert.Len(t, env.store.Rows("links"), 3)

	require.NoError(t, w.UnlinkContact(ctx, "OPP001", "CON001"))
	rows := env.store.Rows("links")
	require.Len(t, rows, 2)
	assert.Equal(t, "OPP002", rows[1][linkColOppID])

	err = w.UnlinkContact(ctx, "OPP001", "CON001")
	assert.ErrorIs(t, err, ErrNotFound)
}
