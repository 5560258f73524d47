// SPDX-License-Identifier: Apache-2.0

package arenastring

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// countingArena wraps a monotonic arena and counts Alloc calls, so tests can
// observe exactly when field storage allocates.
type countingArena struct {
	Arena
	allocs int
}

func newCountingArena() *countingArena {
	return &countingArena{Arena: NewMonotonicArena()}
}

func (c *countingArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	c.allocs++
	return c.Arena.Alloc(size, alignment)
}

// testMessage is the shape generated code produces: one slot per string
// field, plus the message's arena.
type testMessage struct {
	name FieldStringSlot
	data FieldStringSlot
}

func newTestMessage(def *HeapString) *testMessage {
	m := &testMessage{}
	m.name.UnsafeSetDefault(def)
	m.data.UnsafeSetDefault(def)
	return m
}

// arenaModes runs a subtest once with an arena and once without, the two
// storage modes every arena-aware operation must support.
func arenaModes(t *testing.T, fn func(t *testing.T, a Arena)) {
	t.Run("arena", func(t *testing.T) {
		fn(t, NewMonotonicArena())
	})
	t.Run("no arena", func(t *testing.T) {
		fn(t, nil)
	})
}

func TestFieldSlotDefaultIsZeroCost(t *testing.T) {
	def := NewDefaultSentinel("")
	a := newCountingArena()

	var slot FieldStringSlot
	slot.UnsafeSetDefault(def)

	require.True(t, slot.IsDefault(def))
	require.Equal(t, "", slot.Get())
	// The slot's pointer is bit-identical to the sentinel.
	require.Same(t, def, slot.ptr.Get())
	// Reading an unset field never allocates.
	require.Equal(t, 0, a.allocs)
}

func TestFieldSlotNonEmptyDefault(t *testing.T) {
	def := NewDefaultSentinel("fallback")
	arenaModes(t, func(t *testing.T, a Arena) {
		var slot FieldStringSlot
		slot.UnsafeSetDefault(def)
		require.Equal(t, "fallback", slot.Get())

		// Mutable materializes a copy of the default, never the sentinel
		// itself.
		hs := slot.Mutable(def, a)
		require.Equal(t, "fallback", hs.String())
		require.NotSame(t, def, hs)
		require.False(t, slot.IsDefault(def))
		require.Equal(t, "fallback", def.String())
	})
}

func TestFieldSlotSetSequences(t *testing.T) {
	def := NewDefaultSentinel("")
	arenaModes(t, func(t *testing.T, a Arena) {
		var slot FieldStringSlot
		slot.UnsafeSetDefault(def)

		slot.Set(def, "first", a)
		require.Equal(t, "first", slot.Get())

		slot.Set(def, "second value that is well past the inline capacity", a)
		require.Equal(t, "second value that is well past the inline capacity", slot.Get())

		slot.ClearToEmpty(def, a)
		require.Equal(t, "", slot.Get())
		require.False(t, slot.IsDefault(def))

		slot.Set(def, "third", a)
		require.Equal(t, "third", slot.Get())

		hs := slot.Mutable(def, a)
		hs.AppendString("!")
		require.Equal(t, "third!", slot.Get())
	})
}

func TestFieldSlotHeapRatchet(t *testing.T) {
	def := NewDefaultSentinel("")
	a := NewMonotonicArena()

	var slot FieldStringSlot
	slot.UnsafeSetDefault(def)

	slot.Set(def, "value", a)
	require.True(t, slot.ptr.IsExt())

	slot.Mutable(def, a)
	require.False(t, slot.ptr.IsExt())

	// Once heap-owned, Set never reverts the slot to arena storage.
	slot.Set(def, "replacement", a)
	require.False(t, slot.ptr.IsExt())
	require.Equal(t, "replacement", slot.Get())
}

func TestFieldSlotReleaseRoundTrip(t *testing.T) {
	def := NewDefaultSentinel("")
	arenaModes(t, func(t *testing.T, a Arena) {
		var slot FieldStringSlot
		slot.UnsafeSetDefault(def)

		require.Nil(t, slot.Release(def, a))

		slot.Set(def, "round trip", a)
		released := slot.Release(def, a)
		require.NotNil(t, released)
		require.Equal(t, "round trip", released.String())
		require.True(t, slot.IsDefault(def))
		require.Equal(t, "", slot.Get())

		// Re-adopting the released value reproduces the original content.
		slot.SetAllocated(def, released, a)
		require.Equal(t, "round trip", slot.Get())
	})
}

func TestFieldSlotReleaseMovesHeapBuffer(t *testing.T) {
	def := NewDefaultSentinel("")
	a := NewMonotonicArena()

	var slot FieldStringSlot
	slot.UnsafeSetDefault(def)

	// Heap-owned on an arena: the registered shell stays behind, its buffer
	// moves out.
	hs := slot.Mutable(def, a)
	hs.SetString("moved not copied")
	buf := hs.Bytes()

	released := slot.Release(def, a)
	require.Equal(t, "moved not copied", released.String())
	require.Same(t, &buf[0], &released.Bytes()[0])
	require.Equal(t, 0, hs.Len())
}

func TestFieldSlotReleaseCopiesArenaBuffer(t *testing.T) {
	def := NewDefaultSentinel("")
	a := NewMonotonicArena()

	var slot FieldStringSlot
	slot.UnsafeSetDefault(def)
	slot.Set(def, "arena resident value, long enough to not be inline", a)
	e := slot.ptr.AsExt()

	released := slot.Release(def, a)
	require.Equal(t, "arena resident value, long enough to not be inline", released.String())
	// Independent copy: the arena buffer cannot change hands.
	require.NotSame(t, &e.buf[0], &released.Bytes()[0])
	require.True(t, slot.IsDefault(def))
}

func TestFieldSlotClearReuse(t *testing.T) {
	def := NewDefaultSentinel("")
	a := newCountingArena()

	var slot FieldStringSlot
	slot.UnsafeSetDefault(def)

	value := "long enough to need a separate arena buffer"
	slot.Set(def, value, a)
	after := a.allocs
	require.True(t, after > 0)

	// Clear/set cycles never allocate beyond the first transition out of
	// the default state.
	slot.ClearToEmpty(def, a)
	slot.Set(def, value, a)
	slot.ClearToEmpty(def, a)
	require.Equal(t, after, a.allocs)
}

func TestFieldSlotClearToDefault(t *testing.T) {
	def := NewDefaultSentinel("fallback")
	arenaModes(t, func(t *testing.T, a Arena) {
		var slot FieldStringSlot
		slot.UnsafeSetDefault(def)

		slot.ClearToDefault(def, a)
		require.True(t, slot.IsDefault(def))

		slot.Set(def, "changed", a)
		slot.ClearToDefault(def, a)
		require.Equal(t, "fallback", slot.Get())
		// The allocation is reused, not thrown away for the sentinel.
		require.False(t, slot.IsDefault(def))
	})
}

func TestFieldSlotSwapExchangesContent(t *testing.T) {
	def := NewDefaultSentinel("")
	arenaModes(t, func(t *testing.T, a Arena) {
		m := newTestMessage(def)
		m.name.Set(def, "left", a)
		m.data.Set(def, "right", a)

		m.name.Swap(&m.data, def, a)
		require.Equal(t, "right", m.name.Get())
		require.Equal(t, "left", m.data.Get())

		// Swapping a set slot with a default one.
		other := newTestMessage(def)
		other.name.Swap(&m.name, def, a)
		require.Equal(t, "right", other.name.Get())
	})
}

func TestFieldSlotSetAllocated(t *testing.T) {
	def := NewDefaultSentinel("")

	t.Run("no arena", func(t *testing.T) {
		var slot FieldStringSlot
		slot.UnsafeSetDefault(def)
		slot.Set(def, "old", nil)

		adopted := NewHeapString("adopted")
		slot.SetAllocated(def, adopted, nil)
		require.Equal(t, "adopted", slot.Get())
		require.Same(t, adopted, slot.UnsafeMutablePointer())

		// nil resets to default.
		slot.SetAllocated(def, nil, nil)
		require.True(t, slot.IsDefault(def))
	})

	t.Run("arena registers the adopted value", func(t *testing.T) {
		a := NewMonotonicArena()
		var slot FieldStringSlot
		slot.UnsafeSetDefault(def)

		adopted := NewHeapString("adopted")
		slot.SetAllocated(def, adopted, a)
		require.Equal(t, "adopted", slot.Get())
		require.Equal(t, 1, a.Owned())
	})
}

func TestFieldSlotDestroy(t *testing.T) {
	def := NewDefaultSentinel("")

	var slot FieldStringSlot
	slot.UnsafeSetDefault(def)
	slot.Destroy(def, nil) // default slot: nothing to free

	slot.Set(def, "short lived", nil)
	slot.Destroy(def, nil)

	a := NewMonotonicArena()
	var arenaSlot FieldStringSlot
	arenaSlot.UnsafeSetDefault(def)
	arenaSlot.Set(def, "arena owned", a)
	// With an arena, teardown is the arena's job.
	arenaSlot.Destroy(def, a)
	require.Equal(t, "arena owned", arenaSlot.Get())
	a.Release()
}

func TestFieldSlotMutableEndToEnd(t *testing.T) {
	def := NewDefaultSentinel("")
	a := NewMonotonicArena()

	m := newTestMessage(def)
	m.name.Set(def, "hello", a)
	require.True(t, m.name.ptr.IsExt())

	hs := m.name.Mutable(def, a)
	hs.AppendString(" world")

	require.Equal(t, "hello world", m.name.Get())
	require.False(t, m.name.ptr.IsExt())

	// Bulk teardown: no per-field cleanup, no double free.
	a.Release()
}

func TestFieldSlotUnsafeArenaTransfer(t *testing.T) {
	def := NewDefaultSentinel("")
	a := NewMonotonicArena()

	src := newTestMessage(def)
	dst := newTestMessage(def)

	src.name.Set(def, "x", a)
	v := src.name.UnsafeArenaRelease(def, a)
	require.NotNil(t, v)
	require.True(t, src.name.IsDefault(def))

	dst.name.UnsafeArenaSetAllocated(def, v, a)
	require.Equal(t, "x", dst.name.Get())
	require.Equal(t, "", src.name.Get())

	a.Release()
}

func TestFieldSlotUnsafeArenaReleaseDefault(t *testing.T) {
	def := NewDefaultSentinel("")
	a := NewMonotonicArena()

	var slot FieldStringSlot
	slot.UnsafeSetDefault(def)
	require.Nil(t, slot.UnsafeArenaRelease(def, a))

	// A nil result adopted into another slot resets it to default.
	var other FieldStringSlot
	other.UnsafeSetDefault(def)
	other.Set(def, "will be cleared", a)
	other.UnsafeArenaSetAllocated(def, nil, a)
	require.True(t, other.IsDefault(def))
}

func TestFieldSlotBytes(t *testing.T) {
	def := NewDefaultSentinel("")
	arenaModes(t, func(t *testing.T, a Arena) {
		var slot FieldStringSlot
		slot.UnsafeSetDefault(def)

		payload := []byte{0x00, 0xff, 0x10, 0x20}
		slot.SetBytes(def, payload, a)
		require.Equal(t, payload, slot.GetBytes())
	})
}
