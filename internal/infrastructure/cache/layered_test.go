package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realfoodscore/backend/internal/domain"
)

func newTestLayered(t *testing.T) (*LayeredCache, *MemoryCache, *DiskCache) {
	t.Helper()
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Hour)
	return NewLayeredCache(memory, disk), memory, disk
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	layered, memory, disk := newTestLayered(t)
	ctx := context.Background()

	require.NoError(t, layered.Set(ctx, "product:1", []byte("p"), time.Minute))

	_, err := memory.Get(ctx, "product:1")
	assert.NoError(t, err)
	_, err = disk.Get(ctx, "product:1")
	assert.NoError(t, err)
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	layered, memory, disk := newTestLayered(t)
	ctx := context.Background()

	require.NoError(t, disk.Set(ctx, "product:2", []byte("from-disk"), 0))

	got, err := layered.Get(ctx, "product:2")
	require.NoError(t, err)
	assert.Equal(t, "from-disk", string(got))

	promoted, err := memory.Get(ctx, "product:2")
	require.NoError(t, err)
	assert.Equal(t, "from-disk", string(promoted))
}

func TestLayeredCache_SurvivesMemoryLoss(t *testing.T) {
	layered, memory, _ := newTestLayered(t)
	ctx := context.Background()

	require.NoError(t, layered.Set(ctx, "k", []byte("v"), 0))
	memory.Clear()

	ok, err := layered.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := layered.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestLayeredCache_MissAndDelete(t *testing.T) {
	layered, _, _ := newTestLayered(t)
	ctx := context.Background()

	_, err := layered.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, layered.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, layered.Delete(ctx, "k"))

	ok, err := layered.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
