package arenastring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolAcquireRelease(t *testing.T) {
	p := NewArenaPool()

	item := p.Acquire(1)
	require.NotNil(t, item)
	require.Equal(t, uint64(1), item.Key)

	item.Arena.Alloc(100, 1)
	require.Equal(t, 100, item.Arena.Len())

	p.Release(item)
	require.Equal(t, uint64(0), item.Key)
	require.Equal(t, 0, item.Arena.Len())

	// While the strong reference is held, the same item comes back.
	again := p.Acquire(2)
	require.Same(t, item, again)
	require.Equal(t, uint64(2), again.Key)
}

func TestPoolSizesNewArenasFromRecordedPeaks(t *testing.T) {
	p := NewArenaPool()

	item := p.Acquire(7)
	item.Arena.Alloc(4096, 1)
	p.Release(item)

	require.Equal(t, 4096, p.arenaSize(7))
	// Unknown keys fall back to the 1MB default.
	require.Equal(t, 1024*1024, p.arenaSize(8))
}

func TestPoolReleaseMany(t *testing.T) {
	p := NewArenaPool()

	items := []*PoolItem{p.Acquire(1), p.Acquire(1), p.Acquire(1)}
	for _, item := range items {
		item.Arena.Alloc(64, 1)
	}
	p.ReleaseMany(items)

	for _, item := range items {
		require.Equal(t, 0, item.Arena.Len())
	}
}

func TestPoolBulkFreesFieldStorage(t *testing.T) {
	p := NewArenaPool()
	def := NewDefaultSentinel("")

	item := p.Acquire(3)
	var slot FieldStringSlot
	slot.UnsafeSetDefault(def)
	slot.Set(def, "pooled value", item.Arena)
	hs := slot.Mutable(def, item.Arena)
	require.Equal(t, "pooled value", hs.String())
	require.True(t, item.Arena.Owned() > 0)

	// Returning the arena drops the owned references along with the bump
	// allocations.
	p.Release(item)
	require.Equal(t, 0, item.Arena.Owned())
}
