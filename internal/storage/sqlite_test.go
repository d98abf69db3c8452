package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/coinsort/internal/common"
)

func newTestStore(t *testing.T) *StateStore {
	t.Helper()

	store, err := NewStateStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestNewStateStoreValidation(t *testing.T) {
	_, err := NewStateStore("")
	require.Error(t, err)
}

func TestNewStateStoreCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "state.db")

	store, err := NewStateStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "categorizer", "model", []byte(`{"weights":[]}`)))

	value, err := store.Get(ctx, "categorizer", "model")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"weights":[]}`), value)
}

func TestGetMissingKey(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "categorizer", "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "categorizer/missing")
}

func TestPutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "ns", "key", []byte("first")))
	require.NoError(t, store.Put(ctx, "ns", "key", []byte("second")))

	value, err := store.Get(ctx, "ns", "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)
}

func TestNamespacesAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "alpha", "key", []byte("a")))
	require.NoError(t, store.Put(ctx, "beta", "key", []byte("b")))

	a, err := store.Get(ctx, "alpha", "key")
	require.NoError(t, err)
	b, err := store.Get(ctx, "beta", "key")
	require.NoError(t, err)

	assert.Equal(t, []byte("a"), a)
	assert.Equal(t, []byte("b"), b)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "ns", "key", []byte("value")))
	require.NoError(t, store.Delete(ctx, "ns", "key"))

	_, err := store.Get(ctx, "ns", "key")
	require.ErrorIs(t, err, common.ErrNotFound)

	// Deleting a missing key is tolerated.
	require.NoError(t, store.Delete(ctx, "ns", "key"))
}

func TestInputValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "", "key")
	require.Error(t, err)

	err = store.Put(ctx, "ns", "", []byte("value"))
	require.Error(t, err)

	err = store.Put(ctx, "ns", "key", nil)
	require.Error(t, err)

	err = store.Delete(ctx, "", "key")
	require.Error(t, err)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	first, err := NewStateStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Migrate(ctx))
	require.NoError(t, first.Put(ctx, "ns", "key", []byte("durable")))
	require.NoError(t, first.Close())

	second, err := NewStateStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()
	require.NoError(t, second.Migrate(ctx))

	value, err := second.Get(ctx, "ns", "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("durable"), value)
}
