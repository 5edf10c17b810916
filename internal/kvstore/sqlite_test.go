package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "data", "notify.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "notifications:list", `[]`))
	v, ok, err := store.Get(ctx, "notifications:list")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[]`, v)

	// overwrite
	require.NoError(t, store.Set(ctx, "notifications:list", `[{"id":"a"}]`))
	v, ok, err = store.Get(ctx, "notifications:list")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"a"}]`, v)

	require.NoError(t, store.Remove(ctx, "notifications:list"))
	_, ok, err = store.Get(ctx, "notifications:list")
	require.NoError(t, err)
	require.False(t, ok)

	// removing an absent key is not an error
	require.NoError(t, store.Remove(ctx, "notifications:list"))
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notify.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "notifications:badge", "3"))
	require.NoError(t, store.Close())

	// reopening re-runs migrations; already-applied files are skipped
	store, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	v, ok, err := store.Get(ctx, "notifications:badge")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "3", v)
}

func TestSQLiteStore_RemoveMany(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "notify.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))
	require.NoError(t, store.Set(ctx, "c", "3"))

	require.NoError(t, store.RemoveMany(ctx, []string{"a", "b"}))

	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = store.Get(ctx, "c")
	require.NoError(t, err)
	require.True(t, ok)
}
