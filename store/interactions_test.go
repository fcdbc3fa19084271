// ABOUTME: Tests for interaction reads and event-log round trips
// ABOUTME: Opportunity names resolve through the cached opportunity collection
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcrm/models"
)

func intRow(id, oppID, when, eventType, title string) []string {
	row := make([]string, intWidth)
	row[intColID] = id
	row[intColOppID] = oppID
	row[intColTime] = when
	row[intColEventType] = eventType
	row[intColTitle] = title
	return row
}

func seedInteractions(env *testEnv) {
	seedOpportunities(env)
	env.store.SetTab("interactions", [][]string{
		make([]string, intWidth),
		intRow("INT001", "OPP001", "2026-08-01", "電話", "需求訪談"),
		intRow("INT002", "OPP002", "2026-08-15", "會議", "報價討論"),
		intRow("INT003", "OPP001", "2026-08-20", "信件", "寄送規格書"),
	})
}

func newInteractionReader(env *testEnv) *InteractionReader {
	opps := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)
	return NewInteractionReader(env.store, env.cache, env.cfg, opps, env.log)
}

func TestRecentResolvesOpportunityNames(t *testing.T) {
	env := newTestEnv()
	seedInteractions(env)
	r := newInteractionReader(env)

	recent, err := r.Recent(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, recent, 2)
	assert.Equal(t, "INT003", recent[0].InteractionID)
	assert.Equal(t, "新產線導入", recent[0].OpportunityName)
	assert.Equal(t, "INT002", recent[1].InteractionID)
}

func TestByOpportunity(t *testing.T) {
	env := newTestEnv()
	seedInteractions(env)
	r := newInteractionReader(env)

	items, err := r.ByOpportunity(context.Background(), "OPP001")
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "INT003", items[0].InteractionID, "newest first")
}

func TestInteractionSearchMatchesJoinedName(t *testing.T) {
	env := newTestEnv()
	seedInteractions(env)
	r := newInteractionReader(env)

	result, err := r.Search(context.Background(), "產線", 1)
	require.NoError(t, err)
	assert.Len(t, result.Data, 2, "both OPP001 interactions match via the joined name")
}

func TestInteractionCreateDefaultsTimeToNow(t *testing.T) {
	env := newTestEnv()
	seedInteractions(env)
	w := NewInteractionWriter(env.store, env.cache, env.cfg, env.log)

	id, err := w.Create(context.Background(), models.Interaction{
		OpportunityID: "OPP001",
		EventType:     "電話",
		EventTitle:    "回電",
		Recorder:      "Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "INT", id[:3])

	row := env.store.Rows("interactions")[4]
	assert.NotEmpty(t, row[intColTime])
	assert.Equal(t, row[intColCreated], row[intColTime])
}

func TestEventLogRoundTrip(t *testing.T) {
	env := newTestEnv()
	seedOpportunities(env)
	env.store.SetTab("events", [][]string{make([]string, evtWidth)})
	opps := NewOpportunityReader(env.store, env.cache, env.cfg, env.log)
	r := NewEventLogReader(env.store, env.cache, env.cfg, opps, env.log)
	w := NewEventLogWriter(env.store, env.cache, env.cfg, env.log)
	ctx := context.Background()

	in := EventLogInput{
		EventName:     "初訪",
		OpportunityID: "OPP001",
		LineFeatures:  []string{"高速", "多規格"},
		PainPoints:    []string{"停機率高"},
		SummaryNotes:  "初步了解產線現況",
	}
	id, err := w.Create(ctx, in, "Bob")
	require.NoError(t, err)
	assert.Equal(t, "EVT", id[:3])

	row := env.store.Rows("events")[1]
	assert.Equal(t, "高速, 多規格", row[evtColLineFeatures])
	assert.Equal(t, "停機率高", row[evtColPainPoints])

	got, err := r.ByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "初訪", got.EventName)
	assert.Equal(t, "新產線導入", got.OpportunityName)

	in.SummaryNotes = "更新後的摘要"
	require.NoError(t, w.Update(ctx, id, in))
	updated := env.store.Rows("events")[1]
	assert.Equal(t, "更新後的摘要", updated[evtColSummary])
	assert.Equal(t, "Bob", updated[evtColCreator], "creator survives the overwrite")

	assert.ErrorIs(t, w.Update(ctx, "EVT-missing", in), ErrNotFound)
}
