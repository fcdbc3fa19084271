// ABOUTME: Tests for company get-or-create and partial updates
// ABOUTME: Idempotency is asserted via append call counts on the fake store
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCompanies(env *testEnv) {
	env.store.SetTab("companies", [][]string{
		{"id", "name", "phone", "address", "created", "updated", "county", "creator", "modifier", "intro"},
		{"COM001", "台灣科技", "02-1234-5678", "台北市", "2026-01-01", "2026-01-01", "台北市", "Alice", "Alice", ""},
	})
}

func TestGetOrCreateReturnsExistingCompany(t *testing.T) {
	env := newTestEnv()
	seedCompanies(env)
	w := NewCompanyWriter(env.store, env.cache, env.cfg, env.log)

	ref, err := w.GetOrCreate(context.Background(), "台灣科技", ContactSource{}, "", "Bob")
	require.NoError(t, err)

	assert.Equal(t, "COM001", ref.ID)
	assert.Equal(t, 2, ref.RowIndex)
	assert.Equal(t, 0, env.store.AppendCalls["companies"])
}

func TestGetOrCreateMatchesCaseAndWhitespace(t *testing.T) {
	env := newTestEnv()
	env.store.SetTab("companies", [][]string{
		{"id", "name", "phone", "address", "created", "updated", "county", "creator", "modifier", "intro"},
		{"COM002", "Acme Corp", "", "", "", "", "", "", "", ""},
	})
	w := NewCompanyWriter(env.store, env.cache, env.cfg, env.log)

	for _, name := range []string{"acme corp", "ACME CORP", "  Acme Corp  "} {
		ref, err := w.GetOrCreate(context.Background(), name, ContactSource{}, "", "Bob")
		require.NoError(t, err)
		assert.Equal(t, "COM002", ref.ID, "variant %q should match", name)
	}
	assert.Equal(t, 0, env.store.AppendCalls["companies"])
}

func TestGetOrCreateAppendsNewCompany(t *testing.T) {
	env := newTestEnv()
	seedCompanies(env)
	w := NewCompanyWriter(env.store, env.cache, env.cfg, env.log)

	src := ContactSource{Mobile: "0912-345-678", Address: "新竹市"}
	ref, err := w.GetOrCreate(context.Background(), "新公司", src, "新竹市", "Bob")
	require.NoError(t, err)

	assert.NotEmpty(t, ref.ID)
	assert.Equal(t, 3, ref.RowIndex)
	assert.Equal(t, 1, env.store.AppendCalls["companies"])

	rows := env.store.Rows("companies")
	created := rows[2]
	assert.Equal(t, "新公司", created[comColName])
	// Landline is absent, so the mobile seeds the phone column.
	assert.Equal(t, "0912-345-678", created[comColPhone])
	assert.Equal(t, "新竹市", created[comColAddress])
	assert.Equal(t, "新竹市", created[comColCounty])
	assert.Equal(t, "Bob", created[comColCreator])

	// A second call with the same name must not append again.
	again, err := w.GetOrCreate(context.Background(), "新公司", src, "", "Bob")
	require.NoError(t, err)
	assert.Equal(t, ref.ID, again.ID)
	assert.Equal(t, 1, env.store.AppendCalls["companies"])
}

func TestGetOrCreateInvalidatesCompanyCache(t *testing.T) {
	env := newTestEnv()
	seedCompanies(env)
	r := NewCompanyReader(env.store, env.cache, env.cfg, env.log)
	w := NewCompanyWriter(env.store, env.cache, env.cfg, env.log)

	_, err := r.All(context.Background())
	require.NoError(t, err)
	_, err = r.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.GetCalls["companies"], "second read should hit the cache")

	_, err = w.GetOrCreate(context.Background(), "另一家", ContactSource{}, "", "Bob")
	require.NoError(t, err)

	all, err := r.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	// get-or-create scans once, then the read after invalidation fetches.
	assert.Equal(t, 3, env.store.GetCalls["companies"])
}

func TestCompanyUpdateMergesPartialFields(t *testing.T) {
	env := newTestEnv()
	seedCompanies(env)
	w := NewCompanyWriter(env.store, env.cache, env.cfg, env.log)

	intro := "自動化設備製造商"
	err := w.Update(context.Background(), "台灣科技", CompanyUpdate{Introduction: &intro}, "Bob")
	require.NoError(t, err)

	row := env.store.Rows("companies")[1]
	assert.Equal(t, intro, row[comColIntro])
	assert.Equal(t, "02-1234-5678", row[comColPhone], "untouched field must survive")
	assert.Equal(t, "Bob", row[comColModifier])
	assert.NotEqual(t, "2026-01-01", row[comColUpdated])
}

func TestCompanyUpdateUnknownName(t *testing.T) {
	env := newTestEnv()
	seedCompanies(env)
	w := NewCompanyWriter(env.store, env.cache, env.cfg, env.log)

	phone := "07-999"
	err := w.Update(context.Background(), "不存在", CompanyUpdate{Phone: &phone}, "Bob")
	assert.ErrorIs(t, err, ErrNotFound)
}
