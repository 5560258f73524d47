// SPDX-License-Identifier: Apache-2.0

// Package arenastring implements arena-aware storage for string and bytes
// fields inside bulk-allocated message objects. A field slot costs nothing
// while unset, stores its value on the owning message's arena when one is
// present, and transparently switches to independently heap-owned storage
// when a caller needs a buffer it may mutate or claim ownership of.
package arenastring

import (
	"unsafe"
)

// Arena is the allocation collaborator for arena-resident field storage.
type Arena interface {
	// Alloc allocates memory of the given size and returns a pointer to it.
	// The alignment parameter specifies the alignment of the allocated memory.
	// The returned memory is zeroed and lives until Reset or Release.
	Alloc(size, alignment uintptr) unsafe.Pointer

	// Own registers an externally heap-allocated value with the arena. The
	// arena retains a strong reference to x until Reset or Release; dropping
	// those references is the bulk free. Own is also what keeps a heap value
	// reachable while the only pointer to it is stored inside arena memory,
	// which the garbage collector does not scan.
	Own(x any)

	// Owned returns the number of values currently registered via Own.
	Owned() int

	// Reset resets the arena's state without releasing the underlying memory.
	// After invoking this method any pointer previously returned by Alloc
	// becomes immediately invalid, and all references registered via Own are
	// dropped. The arena can be reused for new allocations.
	Reset()

	// Release releases the arena's underlying memory back to the system.
	// After invoking this method, the arena should not be used for further
	// allocations.
	Release()

	// Len returns the total number of bytes currently allocated in the arena.
	Len() int

	// Cap returns the total capacity (maximum bytes) that can be allocated in the arena.
	Cap() int

	// Peak returns the peak number of bytes that have been allocated in the arena.
	// This value is not reset when Reset is called, allowing tracking of maximum usage.
	Peak() int
}

// Allocate allocates memory for a value of type T using the provided Arena.
// If the arena is non-nil, it returns a *T pointer with memory allocated from
// the arena; the object's lifetime is then bound to the arena. If the passed
// arena is nil, it allocates memory using Go's built-in new function.
//
// Pointers stored inside an arena-allocated T are invisible to the garbage
// collector; any heap value referenced only from such a T must be registered
// with the arena via Own.
func Allocate[T any](a Arena) *T {
	if a != nil {
		var x T
		if ptr := a.Alloc(unsafe.Sizeof(x), unsafe.Alignof(x)); ptr != nil {
			return (*T)(ptr)
		}
	}
	return new(T)
}
