// SPDX-License-Identifier: Apache-2.0

package arenastring

import (
	"unsafe"
)

const (
	extTag      = uintptr(1)
	pointerMask = ^extTag
)

// TaggedPtr multiplexes the two field storage representations into a single
// machine word. The low address bit discriminates the pointee: 0 means
// *HeapString, 1 means *ExtendedString. Both types are word aligned, so the
// bit is free.
//
// Get is valid regardless of the tag because ExtendedString embeds HeapString
// at offset zero. A TaggedPtr must never be read before its first Set; a zero
// word means "uninitialized", not "empty field", and every construction path
// goes through FieldStringSlot.UnsafeSetDefault.
type TaggedPtr struct {
	p unsafe.Pointer
}

// SetHeap stores s with the plain-string tag.
func (t *TaggedPtr) SetHeap(s *HeapString) {
	t.p = unsafe.Pointer(s)
}

// SetExt stores s with the extended-string tag.
func (t *TaggedPtr) SetExt(s *ExtendedString) {
	t.p = unsafe.Pointer(uintptr(unsafe.Pointer(s)) | extTag)
}

// Get returns the stored address with the tag masked off, as the common base
// representation shared by both variants.
func (t *TaggedPtr) Get() *HeapString {
	return (*HeapString)(unsafe.Pointer(uintptr(t.p) & pointerMask))
}

// AsHeap returns the pointee as a plain string. The tag is checked only in
// arenadebug builds; otherwise this is a caller-trusted reinterpretation.
func (t *TaggedPtr) AsHeap() *HeapString {
	assert(!t.IsExt(), "TaggedPtr: not a HeapString")
	return (*HeapString)(unsafe.Pointer(uintptr(t.p) & pointerMask))
}

// AsExt returns the pointee as an extended string. The tag is checked only in
// arenadebug builds.
func (t *TaggedPtr) AsExt() *ExtendedString {
	assert(t.IsExt(), "TaggedPtr: not an ExtendedString")
	return (*ExtendedString)(unsafe.Pointer(uintptr(t.p) & pointerMask))
}

// IsExt reports whether the pointee is an ExtendedString.
func (t *TaggedPtr) IsExt() bool {
	return uintptr(t.p)&extTag != 0
}

// IsNull reports whether the masked address is zero.
func (t *TaggedPtr) IsNull() bool {
	return uintptr(t.p)&pointerMask == 0
}
