package pager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how often each operation reaches it.
type countingStore struct {
	Store
	loads, saves, deletes int
}

func (c *countingStore) Load(ctx context.Context, key string) ([]byte, error) {
	c.loads++
	return c.Store.Load(ctx, key)
}

func (c *countingStore) Save(ctx context.Context, key string, data []byte) error {
	c.saves++
	return c.Store.Save(ctx, key, data)
}

func (c *countingStore) Delete(ctx context.Context, key string) error {
	c.deletes++
	return c.Store.Delete(ctx, key)
}

func TestStores(t *testing.T) {
	for _, tc := range []struct {
		name string
		new  func(t *testing.T) Store
	}{
		{"memory", func(*testing.T) Store { return NewMemoryStore() }},
		{"file", func(t *testing.T) Store {
			store, err := NewFileStore(filepath.Join(t.TempDir(), "blocks"))
			require.NoError(t, err)
			return store
		}},
		{"caching", func(t *testing.T) Store {
			store, err := NewCachingStore(NewMemoryStore(), 4)
			require.NoError(t, err)
			return store
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			testStore(t, tc.new(t))
		})
	}
}

func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Load(ctx, "0_0_0_16")
	require.ErrorIs(t, err, ErrNotFound)

	data := []byte{1, 2, 3}
	require.NoError(t, store.Save(ctx, "0_0_0_16", data))
	data[0] = 9 // Stores must not alias the caller's buffer.

	got, err := store.Load(ctx, "0_0_0_16")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	got[1] = 9
	again, err := store.Load(ctx, "0_0_0_16")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again)

	require.NoError(t, store.Save(ctx, "0_0_0_16", []byte{4}))
	got, err = store.Load(ctx, "0_0_0_16")
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, got)

	require.NoError(t, store.Delete(ctx, "0_0_0_16"))
	_, err = store.Load(ctx, "0_0_0_16")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Delete(ctx, "0_0_0_16"), "deleting a missing key")
}

func TestFileStore(t *testing.T) {
	var (
		ctx  = context.Background()
		root = t.TempDir()
	)
	store, err := NewFileStore(root)
	require.NoError(t, err)

	t.Run("invalid keys", func(t *testing.T) {
		for _, key := range []string{"", ".", "..", "a/b", "../escape"} {
			_, err := store.Load(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
			assert.ErrorIs(t, store.Save(ctx, key, nil), ErrInvalidKey, "key %q", key)
		}
	})

	t.Run("no temporary files", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "-16_0_16_16", []byte("block")))
		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "-16_0_16_16"+fileSuffix, entries[0].Name())
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Load(cancelled, "-16_0_16_16")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCachingStore(t *testing.T) {
	var (
		ctx   = context.Background()
		inner = &countingStore{Store: NewMemoryStore()}
	)
	store, err := NewCachingStore(inner, 2)
	require.NoError(t, err)

	_, err = NewCachingStore(inner, 0)
	assert.Error(t, err, "zero sized cache")

	require.NoError(t, store.Save(ctx, "a", []byte("a")))
	assert.False(t, store.Cached("a"), "saves bypass the cache")

	for range 3 {
		got, err := store.Load(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), got)
	}
	assert.Equal(t, 1, inner.loads, "repeated loads should hit the cache")
	assert.True(t, store.Cached("a"))

	require.NoError(t, store.Save(ctx, "a", []byte("b")))
	assert.False(t, store.Cached("a"), "save should invalidate")
	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)
	assert.Equal(t, 2, inner.loads)

	require.NoError(t, store.Delete(ctx, "a"))
	assert.False(t, store.Cached("a"), "delete should invalidate")
	_, err = store.Load(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, store.Cached("a"), "misses are not cached")
	assert.Equal(t, 2, inner.saves)
	assert.Equal(t, 1, inner.deletes)
}
