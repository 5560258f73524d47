// SPDX-License-Identifier: Apache-2.0

package arenastring

// The NoArena variants below assume the owning message has no arena and are
// optimized to add very little overhead over a raw string pointer. A slot
// that has only ever been mutated by NoArena operations can only be in the
// default or heap-owned state, never extended, so the tag branch is skipped
// entirely. Mixing NoArena and arena-aware operations on the same slot is a
// caller contract violation.

// SetNoArena is Set for a message known to have no arena.
func (s *FieldStringSlot) SetNoArena(def *HeapString, value string) {
	s.SetBytesNoArena(def, stringBytes(value))
}

// SetBytesNoArena is SetBytes for a message known to have no arena.
func (s *FieldStringSlot) SetBytesNoArena(def *HeapString, value []byte) {
	if s.IsDefault(def) {
		hs := &HeapString{}
		hs.SetBytes(value)
		s.ptr.SetHeap(hs)
		return
	}
	s.ptr.AsHeap().SetBytes(value)
}

// GetNoArena returns the current value, skipping the tag test.
func (s *FieldStringSlot) GetNoArena() string {
	return s.ptr.AsHeap().String()
}

// GetBytesNoArena returns the current value's bytes, skipping the tag test.
func (s *FieldStringSlot) GetBytesNoArena() []byte {
	return s.ptr.AsHeap().Bytes()
}

// MutableNoArena is Mutable for a message known to have no arena.
func (s *FieldStringSlot) MutableNoArena(def *HeapString) *HeapString {
	if s.IsDefault(def) {
		hs := &HeapString{}
		hs.SetBytes(def.Bytes())
		s.ptr.SetHeap(hs)
	}
	return s.ptr.AsHeap()
}

// ReleaseNoArena is Release for a message known to have no arena. The slot's
// own heap string changes hands without a copy.
func (s *FieldStringSlot) ReleaseNoArena(def *HeapString) *HeapString {
	if s.IsDefault(def) {
		return nil
	}
	return s.ReleaseNonDefaultNoArena(def)
}

// ReleaseNonDefaultNoArena is ReleaseNoArena for a slot known not to be
// default.
func (s *FieldStringSlot) ReleaseNonDefaultNoArena(def *HeapString) *HeapString {
	assert(!s.IsDefault(def), "ReleaseNonDefaultNoArena on a default slot")
	released := s.ptr.AsHeap()
	s.UnsafeSetDefault(def)
	return released
}

// SetAllocatedNoArena adopts value directly, freeing the previous heap
// string. A nil value resets the slot to default.
func (s *FieldStringSlot) SetAllocatedNoArena(def *HeapString, value *HeapString) {
	if !s.IsDefault(def) {
		s.ptr.AsHeap().buf = nil
	}
	if value != nil {
		s.ptr.SetHeap(value)
	} else {
		s.UnsafeSetDefault(def)
	}
}

// DestroyNoArena frees the field's storage.
func (s *FieldStringSlot) DestroyNoArena(def *HeapString) {
	if !s.IsDefault(def) {
		s.ptr.AsHeap().buf = nil
	}
}

// ClearToEmptyNoArena clears the content in place. Assumes the default value
// is the empty string.
func (s *FieldStringSlot) ClearToEmptyNoArena(def *HeapString) {
	if s.IsDefault(def) {
		return
	}
	s.ptr.AsHeap().Clear()
}

// ClearNonDefaultToEmptyNoArena clears the content of a slot known not to be
// default.
func (s *FieldStringSlot) ClearNonDefaultToEmptyNoArena() {
	s.ptr.AsHeap().Clear()
}

// ClearToDefaultNoArena makes the content equal to the default value, reusing
// the existing allocation.
func (s *FieldStringSlot) ClearToDefaultNoArena(def *HeapString) {
	if s.IsDefault(def) {
		return
	}
	s.ptr.AsHeap().SetBytes(def.Bytes())
}

// AssignWithDefault copies other's content into s via the no-arena assignment
// path. A no-op when both slots already reference the same underlying value.
func (s *FieldStringSlot) AssignWithDefault(def *HeapString, other *FieldStringSlot) {
	if s.ptr.Get() == other.ptr.Get() {
		return
	}
	s.SetBytesNoArena(def, other.GetBytesNoArena())
}
