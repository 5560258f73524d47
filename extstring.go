// SPDX-License-Identifier: Apache-2.0

package arenastring

// inlineCapacity is the fixed small capacity stored inside every
// ExtendedString. Values up to this length never need a separate buffer.
const inlineCapacity = 16

// storageClass says where an ExtendedString's byte buffer currently lives.
type storageClass uint8

const (
	storageInline storageClass = iota // inside the object's inline array
	storageArena                      // separately arena-allocated buffer
	storageHeap                       // Go heap buffer, transient until relocated or released
)

// ExtendedString is a string value whose control header lives on an arena.
// Its bytes are held inline for small values, in a separately arena-allocated
// buffer, or transiently on the Go heap when a plain assignment outgrew the
// current buffer. Unlike a plain HeapString it can relocate its buffer on
// demand, which is what lets a field hand out content the caller may claim
// sole ownership of.
//
// The embedded HeapString is the content view shared with the plain
// representation; TaggedPtr.Get relies on it being the first field.
type ExtendedString struct {
	HeapString
	arena  Arena
	class  storageClass
	inline [inlineCapacity]byte
}

// newExtendedString arena-allocates an ExtendedString holding a copy of
// value. The object's header is part of the arena's bulk allocation and is
// never individually freed.
func newExtendedString(a Arena, value []byte) *ExtendedString {
	e := Allocate[ExtendedString](a)
	e.arena = a
	e.buf = e.inline[:0]
	e.class = storageInline
	e.AssignFromArena(value, a)
	return e
}

// AssignFromArena replaces the content with a copy of value. If the current
// capacity is too small, a buffer of exactly len(value) bytes is requested
// from the arena and the object rebinds to it, abandoning the previous buffer
// for the arena's bulk teardown. No growth headroom is reserved. Reports
// whether a reallocation occurred.
//
// With a nil arena this is a plain assignment and reports false.
func (e *ExtendedString) AssignFromArena(value []byte, a Arena) bool {
	if a == nil {
		e.SetBytes(value)
		return false
	}
	realloc := false
	if cap(e.buf) < len(value) {
		e.buf = AllocateBytes(a, len(value))
		e.class = storageArena
		realloc = true
	}
	e.buf = e.buf[:len(value)]
	copy(e.buf, value)
	return realloc
}

// RelocateToHeap moves the buffer off the arena: it allocates a Go heap
// buffer sized to the current length, copies the bytes, and rebinds to it,
// abandoning the arena buffer for bulk teardown. Inline content is left in
// place, and a buffer already on the heap is not moved again, so repeated
// calls are no-ops. Returns the content view, which keeps its address across
// calls.
//
// The new heap buffer is registered with the owning arena: the object's
// header is arena memory, which the garbage collector does not scan.
func (e *ExtendedString) RelocateToHeap() *HeapString {
	if e.class == storageArena {
		nb := make([]byte, len(e.buf))
		copy(nb, e.buf)
		e.buf = nb
		e.class = storageHeap
		if e.arena != nil {
			e.arena.Own(nb)
		}
	}
	return &e.HeapString
}

// promoteToHeap returns an independently heap-allocated HeapString holding a
// copy of the current content, registered with the owning arena so it stays
// reachable even from a slot stored in arena memory. The ExtendedString
// itself is untouched.
func (e *ExtendedString) promoteToHeap() *HeapString {
	hs := &HeapString{buf: make([]byte, len(e.buf))}
	copy(hs.buf, e.buf)
	if e.arena != nil {
		e.arena.Own(hs)
	}
	return hs
}

// SetBytes replaces the content with a copy of v. Growth outside
// AssignFromArena lands on the Go heap, leaving the object in the transient
// heap-backed state until the next relocation.
func (e *ExtendedString) SetBytes(v []byte) {
	if cap(e.buf) >= len(v) {
		e.buf = e.buf[:len(v)]
		copy(e.buf, v)
		return
	}
	nb := make([]byte, len(v))
	copy(nb, v)
	e.buf = nb
	e.class = storageHeap
	if e.arena != nil {
		e.arena.Own(nb)
	}
}

// SetString replaces the content with a copy of v.
func (e *ExtendedString) SetString(v string) {
	e.SetBytes(stringBytes(v))
}
