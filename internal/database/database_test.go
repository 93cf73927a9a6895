package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mysql", "whatever")
	assert.Error(t, err)
}

func TestConnectCreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wordmemo.db")

	db, err := Connect(DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)
}

func TestKVStore(t *testing.T) {
	store := NewKVStore(openTestDB(t), nil)
	ctx := context.Background()

	_, ok := store.Load("missing")
	assert.False(t, ok)

	require.NoError(t, store.Save("cards", "[]"))
	require.NoError(t, store.Save("cards", `[{"id":"a"}]`))
	require.NoError(t, store.Save("prefs", `{"reverse":true}`))

	value, ok := store.Load("cards")
	require.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, value)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cards", "prefs"}, keys)

	require.NoError(t, store.Delete(ctx, "cards"))
	_, ok = store.Load("cards")
	assert.False(t, ok)
}

func TestKVStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordmemo.db")

	db, err := Connect(DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, NewKVStore(db, nil).Save("source", "words.txt"))
	require.NoError(t, db.Close())

	db, err = Connect(DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	value, ok := NewKVStore(db, nil).Load("source")
	require.True(t, ok)
	assert.Equal(t, "words.txt", value)
}

func TestKVStoreLoadFailureIsMissing(t *testing.T) {
	db := openTestDB(t)
	store := NewKVStore(db, nil)
	require.NoError(t, db.Close())

	_, ok := store.Load("cards")
	assert.False(t, ok)
	assert.Error(t, store.Save("cards", "[]"))
}

func TestStatisticsRepository(t *testing.T) {
	repo := NewStatisticsRepository(openTestDB(t))
	ctx := context.Background()

	empty, err := repo.GetDay(ctx, "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total())

	require.NoError(t, repo.RecordReview(ctx, "2024-05-10", true))
	require.NoError(t, repo.RecordReview(ctx, "2024-05-10", false))
	require.NoError(t, repo.RecordReview(ctx, "2024-05-10", true))
	require.NoError(t, repo.RecordReview(ctx, "2024-05-11", false))

	day, err := repo.GetDay(ctx, "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, 2, day.Knew)
	assert.Equal(t, 1, day.Forgot)

	recent, err := repo.Recent(ctx, 7)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2024-05-11", recent[0].Day)
	assert.Equal(t, 1, recent[0].Forgot)
}
