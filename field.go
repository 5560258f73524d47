// SPDX-License-Identifier: Apache-2.0

package arenastring

import (
	"unsafe"
)

// FieldStringSlot is the storage for one string or bytes field of one message
// instance. It collects all field string operations in one place and
// abstracts the underlying representation behind a tagged pointer, so that an
// unset field costs a single word, an arena-backed field keeps its bytes in
// the arena's bulk allocation, and a field handed to a caller for mutation or
// ownership transfer is always a plain heap string.
//
// Every operation takes the field's default sentinel and, for the arena-aware
// set, the owning message's arena. The arena must be the same for the life of
// the slot. A slot is not safe for concurrent use; callers serialize access
// at the message level.
//
// A zero FieldStringSlot is uninitialized, not empty: UnsafeSetDefault must
// run before any other operation.
type FieldStringSlot struct {
	ptr TaggedPtr
}

// UnsafeSetDefault points the slot at the field's default sentinel without
// looking at the current value. It is the only safe call after construction
// or when the slot becomes the active member of a oneof union.
func (s *FieldStringSlot) UnsafeSetDefault(def *HeapString) {
	s.ptr.SetHeap(def)
}

// IsDefault reports whether the slot still points at the default sentinel.
func (s *FieldStringSlot) IsDefault(def *HeapString) bool {
	return s.ptr.p == unsafe.Pointer(def)
}

// Get returns the current value. The string is a view into the slot's
// storage, valid until the next mutating operation.
func (s *FieldStringSlot) Get() string {
	return s.ptr.Get().String()
}

// GetBytes returns the current value's bytes, valid until the next mutating
// operation.
func (s *FieldStringSlot) GetBytes() []byte {
	return s.ptr.Get().Bytes()
}

// Set replaces the field's value. A default slot allocates storage on the
// arena when one is present, otherwise on the heap. A non-default slot
// assigns in place through its current representation.
func (s *FieldStringSlot) Set(def *HeapString, value string, a Arena) {
	s.SetBytes(def, stringBytes(value), a)
}

// SetBytes is Set for a byte value.
func (s *FieldStringSlot) SetBytes(def *HeapString, value []byte, a Arena) {
	if s.IsDefault(def) {
		s.createInstance(a, value, false)
		return
	}
	if s.ptr.IsExt() {
		s.ptr.AsExt().AssignFromArena(value, a)
	} else {
		// A heap-owned slot stays heap-owned even when an arena is
		// available; reverting would change what Release and SetAllocated
		// may assume about buffer ownership.
		s.ptr.AsHeap().SetBytes(value)
	}
}

// Mutable returns the value as a plain heap string the caller may freely
// mutate. A default slot allocates a heap string holding the default bytes,
// even on an arena. An arena-backed value is moved to the heap first; once
// Mutable has returned, the slot is never arena-backed again.
func (s *FieldStringSlot) Mutable(def *HeapString, a Arena) *HeapString {
	if s.IsDefault(def) {
		s.createInstance(a, def.Bytes(), true)
	} else if s.ptr.IsExt() {
		s.ptr.SetHeap(s.ptr.AsExt().promoteToHeap())
	}
	return s.ptr.AsHeap()
}

// Release detaches the field's value and returns it as a heap string that no
// arena owns; the caller is solely responsible for it. Returns nil if the
// field was not set. The slot is reset to the default state.
func (s *FieldStringSlot) Release(def *HeapString, a Arena) *HeapString {
	if s.IsDefault(def) {
		return nil
	}
	return s.ReleaseNonDefault(def, a)
}

// ReleaseNonDefault is Release for a slot known not to be default.
func (s *FieldStringSlot) ReleaseNonDefault(def *HeapString, a Arena) *HeapString {
	assert(!s.IsDefault(def), "ReleaseNonDefault on a default slot")
	var released *HeapString
	if a != nil {
		if s.ptr.IsExt() {
			// Arena storage cannot change hands, copy out of it.
			e := s.ptr.AsExt()
			released = &HeapString{buf: make([]byte, e.Len())}
			copy(released.buf, e.buf)
		} else {
			// The registered shell stays with the arena; steal its buffer.
			hs := s.ptr.AsHeap()
			released = &HeapString{buf: hs.buf}
			hs.buf = nil
		}
	} else {
		released = s.ptr.AsHeap()
	}
	s.UnsafeSetDefault(def)
	return released
}

// UnsafeArenaRelease is Release without severing the arena association: an
// arena-backed value is relocated to the heap, but its container remains part
// of the arena's bulk teardown. The result must only be re-adopted, via
// UnsafeArenaSetAllocated, by a field on an arena with equal or longer
// lifetime. Returns nil if the field was not set.
func (s *FieldStringSlot) UnsafeArenaRelease(def *HeapString, _ Arena) *HeapString {
	if s.IsDefault(def) {
		return nil
	}
	var released *HeapString
	if s.ptr.IsExt() {
		released = s.ptr.AsExt().RelocateToHeap()
	} else {
		released = s.ptr.AsHeap()
	}
	s.UnsafeSetDefault(def)
	return released
}

// SetAllocated adopts value, a heap string not yet owned by any slot, as the
// field's storage. The current content is destroyed as appropriate for the
// message's arena status. With a non-nil arena, value is registered with it
// for the eventual bulk free. A nil value resets the slot to default.
func (s *FieldStringSlot) SetAllocated(def *HeapString, value *HeapString, a Arena) {
	if a == nil && !s.IsDefault(def) {
		s.Destroy(def, a)
	}
	if value != nil {
		s.ptr.SetHeap(value)
		if a != nil {
			a.Own(value)
		}
	} else {
		s.UnsafeSetDefault(def)
	}
}

// UnsafeArenaSetAllocated adopts value with no destroy or registration step.
// It is safe only for a value returned by UnsafeArenaRelease on a field owned
// by the same arena.
func (s *FieldStringSlot) UnsafeArenaSetAllocated(def *HeapString, value *HeapString, _ Arena) {
	if value != nil {
		s.ptr.SetHeap(value)
	} else {
		s.UnsafeSetDefault(def)
	}
}

// Swap exchanges the two fields' values. Both slots must have the same
// arena-or-not status; the message-level swap logic guards this. In
// arenadebug builds the contents are swapped instead of the pointers, so a
// reference previously obtained via Mutable stays valid and observes the
// other field's former value.
func (s *FieldStringSlot) Swap(other *FieldStringSlot, def *HeapString, a Arena) {
	if debugEnabled {
		// If both slots are default, swapping is uninteresting. Otherwise go
		// through Mutable so the sentinel itself is never written to.
		if s.IsDefault(def) && other.IsDefault(def) {
			return
		}
		sp := s.Mutable(def, a)
		op := other.Mutable(def, a)
		sp.buf, op.buf = op.buf, sp.buf
		return
	}
	s.UnsafeSwap(other)
}

// UnsafeSwap exchanges the internal pointers unconditionally.
func (s *FieldStringSlot) UnsafeSwap(other *FieldStringSlot) {
	s.ptr, other.ptr = other.ptr, s.ptr
}

// Destroy frees the field's storage when the message has no arena. With an
// arena, teardown is the arena's job and this is a no-op.
func (s *FieldStringSlot) Destroy(def *HeapString, a Arena) {
	if a == nil && !s.IsDefault(def) {
		s.ptr.AsHeap().buf = nil
	}
}

// ClearToEmpty clears the content. An existing allocation is kept and cleared
// in place, so repeated clear/set cycles do not reallocate. Assumes the
// default value is the empty string.
func (s *FieldStringSlot) ClearToEmpty(def *HeapString, _ Arena) {
	if s.IsDefault(def) {
		// Already the default, which is empty.
		return
	}
	s.ptr.Get().Clear()
}

// ClearNonDefaultToEmpty clears the content of a slot known not to be
// default.
func (s *FieldStringSlot) ClearNonDefaultToEmpty() {
	s.ptr.Get().Clear()
}

// ClearToDefault makes the content equal to the default value, reusing the
// existing allocation rather than reverting to the sentinel.
func (s *FieldStringSlot) ClearToDefault(def *HeapString, _ Arena) {
	if s.IsDefault(def) {
		return
	}
	if s.ptr.IsExt() {
		s.ptr.AsExt().SetBytes(def.Bytes())
	} else {
		s.ptr.AsHeap().SetBytes(def.Bytes())
	}
}

// UnsafeMutablePointer returns the value as a plain heap string with no
// default check and no tag test. Generated code uses it when the slot state
// is already known.
func (s *FieldStringSlot) UnsafeMutablePointer() *HeapString {
	return s.ptr.AsHeap()
}

// UnsafeSetTaggedPointer overwrites the slot's word directly.
func (s *FieldStringSlot) UnsafeSetTaggedPointer(p TaggedPtr) {
	s.ptr = p
}

// createInstance transitions the slot out of the default state. This is the
// only point at which allocation may occur. With an arena the value becomes
// an ExtendedString on the arena, unless forceHeap asks for plain-string
// semantics, in which case the heap string is registered with the arena so
// the bulk-free contract holds.
func (s *FieldStringSlot) createInstance(a Arena, initial []byte, forceHeap bool) {
	if a != nil && !forceHeap {
		s.ptr.SetExt(newExtendedString(a, initial))
		return
	}
	hs := &HeapString{}
	hs.SetBytes(initial)
	if a != nil {
		a.Own(hs)
	}
	s.ptr.SetHeap(hs)
}
