package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realfoodscore/backend/internal/domain"
)

func TestDiskCache_SetAndGet(t *testing.T) {
	cache := NewDiskCache(filepath.Join(t.TempDir(), "lookups"), time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "product:12345678", []byte(`{"name":"Oats"}`), 0))

	got, err := cache.Get(ctx, "product:12345678")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Oats"}`, string(got))

	ok, err := cache.Exists(ctx, "product:12345678")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDiskCache_Miss(t *testing.T) {
	cache := NewDiskCache(t.TempDir(), time.Hour)

	_, err := cache.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	ok, err := cache.Exists(context.Background(), "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDiskCache_Expiration(t *testing.T) {
	dir := t.TempDir()
	cache := NewDiskCache(dir, time.Hour)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(2 * time.Minute)
	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	_, statErr := os.Stat(cache.path("k"))
	assert.True(t, os.IsNotExist(statErr), "expired entry should be removed")
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	cache := NewDiskCache(dir, time.Hour)
	require.NoError(t, os.WriteFile(cache.path("bad"), []byte("{not json"), 0o644))

	_, err := cache.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestDiskCache_KeysAreHashed(t *testing.T) {
	dir := t.TempDir()
	cache := NewDiskCache(dir, time.Hour)

	require.NoError(t, cache.Set(context.Background(), "search:../../etc/passwd", []byte("x"), 0))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
	assert.Len(t, entries[0].Name(), 64+len(".json"))
}

func TestDiskCache_DeleteAndClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cache := NewDiskCache(dir, time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, cache.Delete(ctx, "a"))
	require.NoError(t, cache.Delete(ctx, "a"), "deleting a missing key is not an error")

	require.NoError(t, cache.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, cache.Clear())
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
