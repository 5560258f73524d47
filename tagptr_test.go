// SPDX-License-Identifier: Apache-2.0

package arenastring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaggedPtrHeap(t *testing.T) {
	hs := NewHeapString("plain")

	var p TaggedPtr
	p.SetHeap(hs)

	require.False(t, p.IsExt())
	require.False(t, p.IsNull())
	require.Same(t, hs, p.Get())
	require.Same(t, hs, p.AsHeap())
}

func TestTaggedPtrExt(t *testing.T) {
	a := NewMonotonicArena()
	e := newExtendedString(a, []byte("extended"))

	var p TaggedPtr
	p.SetExt(e)

	require.True(t, p.IsExt())
	require.False(t, p.IsNull())
	require.Same(t, e, p.AsExt())

	// Get masks the tag and yields the embedded content view: valid for both
	// variants.
	require.Equal(t, "extended", p.Get().String())
}

func TestTaggedPtrRetag(t *testing.T) {
	a := NewMonotonicArena()
	e := newExtendedString(a, []byte("v"))
	hs := NewHeapString("w")

	var p TaggedPtr
	p.SetExt(e)
	require.True(t, p.IsExt())

	p.SetHeap(hs)
	require.False(t, p.IsExt())
	require.Equal(t, "w", p.Get().String())
}

func TestTaggedPtrIsNull(t *testing.T) {
	var p TaggedPtr
	require.True(t, p.IsNull())

	p.SetHeap(NewHeapString(""))
	require.False(t, p.IsNull())
}
