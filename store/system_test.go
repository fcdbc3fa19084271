// ABOUTME: Tests for system configuration grouping and the user roster
// ABOUTME: Disabled and partially filled rows never surface
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcrm/models"
)

func seedSystemSheets(env *testEnv) {
	env.store.SetTab("system", [][]string{
		{"設定類型", "設定項目", "顯示順序", "啟用狀態", "備註"},
		{"機會階段", "02_需求確認", "2", "TRUE", "需求確認"},
		{"機會階段", "01_初步接觸", "1", "TRUE", "初步接觸"},
		{"機會階段", "99_停用", "99", "FALSE", "停用階段"},
		{"機會階段", "03_提案報價", "", "TRUE", ""},
		{"機會類型", "新專案", "1", "TRUE", ""},
		{"", "無群組", "1", "TRUE", ""},
	})
	env.store.SetTab("users", [][]string{
		{"username", "hash", "display"},
		{"alice", "$2a$10$abc", "Alice"},
		{"pending", "", "Pending User"},
		{"", "", ""},
	})
}

func TestConfigGroupsEnabledOptionsInDisplayOrder(t *testing.T) {
	env := newTestEnv()
	seedSystemSheets(env)
	r := NewSystemReader(env.store, env.cache, env.cfg, env.log)

	cfg, err := r.Config(context.Background())
	require.NoError(t, err)

	stages := cfg[models.StageGroup]
	require.Len(t, stages, 3)
	assert.Equal(t, "01_初步接觸", stages[0].Value)
	assert.Equal(t, "02_需求確認", stages[1].Value)
	assert.Equal(t, "03_提案報價", stages[2].Value, "rows without a numeric order sort last")
	assert.Equal(t, 99, stages[2].Order)
	assert.Equal(t, "03_提案報價", stages[2].Note, "empty note falls back to the item value")

	assert.Len(t, cfg["機會類型"], 1)
	assert.NotContains(t, cfg, "", "rows without a group are dropped")
}

func TestConfigIsCached(t *testing.T) {
	env := newTestEnv()
	seedSystemSheets(env)
	r := NewSystemReader(env.store, env.cache, env.cfg, env.log)
	ctx := context.Background()

	_, err := r.Config(ctx)
	require.NoError(t, err)
	_, err = r.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.GetCalls["system"])
}

func TestStageNameFallsBackToRawValue(t *testing.T) {
	env := newTestEnv()
	seedSystemSheets(env)
	r := NewSystemReader(env.store, env.cache, env.cfg, env.log)

	cfg, err := r.Config(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "初步接觸", cfg.StageName(models.StageGroup, "01_初步接觸"))
	assert.Equal(t, "05_未知", cfg.StageName(models.StageGroup, "05_未知"))
}

func TestUsersSkipsUnprovisionedRows(t *testing.T) {
	env := newTestEnv()
	seedSystemSheets(env)
	r := NewSystemReader(env.store, env.cache, env.cfg, env.log)
	ctx := context.Background()

	users, err := r.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	u, err := r.UserByName(ctx, "ALICE")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Alice", u.DisplayName)

	missing, err := r.UserByName(ctx, "pending")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
