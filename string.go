// SPDX-License-Identifier: Apache-2.0

package arenastring

import (
	"unsafe"
)

// HeapString is a plain mutable byte string whose buffer lives on the Go
// heap. It is the storage representation for heap-owned field values and for
// the per-field default sentinels.
type HeapString struct {
	buf []byte
}

// NewHeapString returns a heap-owned string holding a copy of value.
func NewHeapString(value string) *HeapString {
	s := &HeapString{}
	s.SetString(value)
	return s
}

// NewDefaultSentinel returns the shared default value for a field. The result
// must never be mutated; every unset instance of the field, across all
// messages of the type, points at it.
func NewDefaultSentinel(value string) *HeapString {
	return NewHeapString(value)
}

// String returns the content as a string without copying. The result is only
// valid until the next mutation.
func (s *HeapString) String() string {
	if len(s.buf) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(s.buf), len(s.buf))
}

// Bytes returns the backing bytes. The slice is only valid until the next
// mutation.
func (s *HeapString) Bytes() []byte {
	return s.buf
}

// Len returns the content length in bytes.
func (s *HeapString) Len() int {
	return len(s.buf)
}

// Cap returns the current storage capacity in bytes.
func (s *HeapString) Cap() int {
	return cap(s.buf)
}

// Empty reports whether the content has zero length.
func (s *HeapString) Empty() bool {
	return len(s.buf) == 0
}

// Equal reports whether the content equals other's content.
func (s *HeapString) Equal(other *HeapString) bool {
	return string(s.buf) == string(other.buf)
}

// SetBytes replaces the content with a copy of v, reusing the existing buffer
// when its capacity suffices.
func (s *HeapString) SetBytes(v []byte) {
	if cap(s.buf) >= len(v) {
		s.buf = s.buf[:len(v)]
		copy(s.buf, v)
		return
	}
	nb := make([]byte, len(v))
	copy(nb, v)
	s.buf = nb
}

// SetString replaces the content with a copy of v.
func (s *HeapString) SetString(v string) {
	s.SetBytes(stringBytes(v))
}

// Append appends p to the content, growing the buffer on the Go heap as
// needed.
func (s *HeapString) Append(p []byte) {
	s.buf = append(s.buf, p...)
}

// AppendString appends v to the content.
func (s *HeapString) AppendString(v string) {
	s.buf = append(s.buf, v...)
}

// Clear truncates the content to zero length, keeping the allocated buffer.
func (s *HeapString) Clear() {
	s.buf = s.buf[:0]
}

// stringBytes gives a read-only byte view of v without copying. Callers must
// not write through the result.
func stringBytes(v string) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(v), len(v))
}
