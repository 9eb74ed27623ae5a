// internal/storage/store_test.go
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store KVStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, KeyUsers)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyUsers, []byte(`[{"id":"u1"}]`)))
	value, err := store.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"u1"}]`, string(value))

	require.NoError(t, store.Set(ctx, KeyUsers, []byte(`[]`)))
	value, err = store.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))

	require.NoError(t, store.Set(ctx, CartKey("u2"), []byte(`[]`)))
	require.NoError(t, store.Set(ctx, CartKey("u1"), []byte(`[]`)))
	keys, err := store.Keys(ctx, CartKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"beatmarket_cart_u1", "beatmarket_cart_u2"}, keys)

	require.NoError(t, store.Delete(ctx, CartKey("u1")))
	require.NoError(t, store.Delete(ctx, "missing"))
	_, err = store.Get(ctx, CartKey("u1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreInjectedFailure(t *testing.T) {
	store := NewMemoryStore()
	boom := errors.New("quota exceeded")
	store.WithError("set", boom)

	err := store.Set(context.Background(), KeyBeats, []byte(`[]`))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{KeyBeats}, store.Writes())

	store.WithError("set", nil)
	assert.NoError(t, store.Set(context.Background(), KeyBeats, []byte(`[]`)))
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "state.db"), "kv_entries")
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	store, err := OpenSQLite(path, "kv_entries")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeyCurrentUser, []byte(`"token"`)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path, "kv_entries")
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(ctx, KeyCurrentUser)
	require.NoError(t, err)
	assert.Equal(t, `"token"`, string(value))
}

func TestIsSQLiteBusy(t *testing.T) {
	assert.False(t, isSQLiteBusy(nil))
	assert.True(t, isSQLiteBusy(errors.New("database is locked")))
	assert.False(t, isSQLiteBusy(errors.New("no such table")))
}
