// ABOUTME: Tests for the bulletin board ordering and CRUD
// ABOUTME: Only published rows surface; pinned entries lead the list
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAnnouncements(env *testEnv) {
	env.store.SetTab("announcements", [][]string{
		{"id", "title", "content", "creator", "created", "updated", "status", "pinned"},
		{"ANNC01", "舊消息", "內容A", "Alice", "2026-07-01", "2026-07-01", "已發布", "FALSE"},
		{"ANNC02", "置頂公告", "內容B", "Alice", "2026-06-01", "2026-06-01", "已發布", "TRUE"},
		{"ANNC03", "草稿", "內容C", "Alice", "2026-08-01", "2026-08-01", "草稿", "FALSE"},
		{"ANNC04", "新消息", "內容D", "Alice", "2026-08-10", "2026-08-10", "已發布", "false"},
	})
}

func TestPublishedOrdersPinnedThenRecency(t *testing.T) {
	env := newTestEnv()
	seedAnnouncements(env)
	r := NewAnnouncementReader(env.store, env.cache, env.cfg, env.log)

	published, err := r.Published(context.Background())
	require.NoError(t, err)

	require.Len(t, published, 3)
	assert.Equal(t, "ANNC02", published[0].ID, "pinned entry leads despite being oldest")
	assert.Equal(t, "ANNC04", published[1].ID)
	assert.Equal(t, "ANNC01", published[2].ID)
}

func TestAnnouncementCreateUpdateDelete(t *testing.T) {
	env := newTestEnv()
	seedAnnouncements(env)
	r := NewAnnouncementReader(env.store, env.cache, env.cfg, env.log)
	w := NewAnnouncementWriter(env.store, env.cache, env.cfg, env.log)
	ctx := context.Background()

	id, err := w.Create(ctx, "新公告", "本週五停機維護", "Bob", true)
	require.NoError(t, err)
	assert.Equal(t, "ANNC", id[:4])
	assert.Equal(t, "TRUE", env.store.Rows("announcements")[5][annColPinned],
		"pinned column uses the workbook's uppercase booleans")

	unpin := false
	require.NoError(t, w.Update(ctx, id, AnnouncementUpdate{IsPinned: &unpin}, "Bob"))
	assert.Equal(t, "FALSE", env.store.Rows("announcements")[5][annColPinned])
	pin := true
	require.NoError(t, w.Update(ctx, id, AnnouncementUpdate{IsPinned: &pin}, "Bob"))

	published, err := r.Published(ctx)
	require.NoError(t, err)
	require.Len(t, published, 4)
	assert.Equal(t, id, published[0].ID, "freshly pinned entry sorts first")

	title := "更新後的公告"
	require.NoError(t, w.Update(ctx, id, AnnouncementUpdate{Title: &title}, "Bob"))
	published, err = r.Published(ctx)
	require.NoError(t, err)
	assert.Equal(t, title, published[0].Title)
	assert.Equal(t, "本週五停機維護", published[0].Content, "untouched field must survive")

	require.NoError(t, w.Delete(ctx, id))
	published, err = r.Published(ctx)
	require.NoError(t, err)
	assert.Len(t, published, 3)

	assert.ErrorIs(t, w.Delete(ctx, id), ErrNotFound)
}
