package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyClientID, []byte("7c9e6679-7425-40de-944b-e07fc1f90ae7")))

	v, err := r.Get(ctx, KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", string(v))
}

func TestGet_Missing_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_Upsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeySyncUser, []byte("old")))
	require.NoError(t, r.Set(ctx, KeySyncUser, []byte("new")))

	v, err := r.Get(ctx, KeySyncUser)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestListAndDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))

	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": {0xBB}}, m)
}

func TestStringHelpers(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, ok, err := GetString(ctx, r, KeyLastSync)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetString(ctx, r, KeyLastSync, "2024-03-15T10:00:00Z"))

	v, ok, err := GetString(ctx, r, KeyLastSync)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-15T10:00:00Z", v)
}

func TestErrorsAreWrapped(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err = r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, "failed to set metadata[k]")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")
}
