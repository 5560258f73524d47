// SPDX-License-Identifier: Apache-2.0

package arenastring

import (
	"unsafe"
)

type monotonicArena struct {
	buffers            []*monotonicBuffer
	owned              []any   // strong references registered via Own
	peak               uintptr // tracks peak allocated space
	minBufferSize      uintptr // minimum size for new buffers
	initialBufferCount int     // number of initial buffers to create
}

type monotonicBuffer struct {
	ptr    unsafe.Pointer
	offset uintptr
	size   uintptr
}

func newMonotonicBuffer(size int) *monotonicBuffer {
	return &monotonicBuffer{size: uintptr(size)}
}

func (s *monotonicBuffer) alloc(size, alignment uintptr) (unsafe.Pointer, bool) {
	if s.ptr == nil {
		buf := make([]byte, s.size) // allocate monotonic buffer lazily
		s.ptr = unsafe.Pointer(unsafe.SliceData(buf))
	}
	alignOffset := uintptr(0)
	for alignedPtr := uintptr(s.ptr) + s.offset; alignedPtr%alignment != 0; alignedPtr++ {
		alignOffset++
	}
	allocSize := size + alignOffset

	if s.availableBytes() < allocSize {
		return nil, false
	}
	ptr := unsafe.Pointer(uintptr(s.ptr) + s.offset + alignOffset)
	s.offset += allocSize

	// This loop is compiled down to a runtime.memclrNoHeapPointers call,
	// which is an assembler optimized implementation.
	b := unsafe.Slice((*byte)(ptr), size)
	for i := range b {
		b[i] = 0
	}

	return ptr, true
}

func (s *monotonicBuffer) reset() {
	s.offset = 0
}

func (s *monotonicBuffer) release() {
	s.offset = 0
	s.ptr = nil
}

func (s *monotonicBuffer) availableBytes() uintptr {
	return s.size - s.offset
}

// NewMonotonicArena creates a new monotonic arena with optional configuration.
// If no options are provided, it uses a 32KB minimum buffer size and creates
// one initial buffer. The arena is not safe for concurrent use; wrap it with
// NewConcurrentArena when multiple goroutines allocate from it.
func NewMonotonicArena(opts ...MonotonicArenaOption) Arena {
	a := &monotonicArena{
		minBufferSize:      minBufferSize,
		initialBufferCount: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	for i := 0; i < a.initialBufferCount; i++ {
		a.buffers = append(a.buffers, newMonotonicBuffer(int(a.minBufferSize)))
	}
	return a
}

const (
	minBufferSize = 1024 * 32 // 32KB
)

// MonotonicArenaOption represents a configuration option for a monotonic arena.
type MonotonicArenaOption func(*monotonicArena)

// WithMinBufferSize sets the minimum buffer size for new buffers created by the arena.
func WithMinBufferSize(size int) MonotonicArenaOption {
	return func(a *monotonicArena) {
		a.minBufferSize = uintptr(size)
	}
}

// WithInitialBufferCount sets the number of initial buffers to create.
func WithInitialBufferCount(count int) MonotonicArenaOption {
	return func(a *monotonicArena) {
		a.initialBufferCount = count
	}
}

// Alloc satisfies the Arena interface.
func (a *monotonicArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	for i := 0; i < len(a.buffers); i++ {
		ptr, ok := a.buffers[i].alloc(size, alignment)
		if ok {
			if currentLen := a.len(); currentLen > a.peak {
				a.peak = currentLen
			}
			return ptr
		}
	}

	// No existing buffer has enough space, create a new one. The new buffer
	// must fit the allocation plus worst-case alignment padding.
	requiredSize := size + alignment - 1
	newBufferSize := requiredSize
	if newBufferSize < a.minBufferSize {
		newBufferSize = a.minBufferSize
	}

	newBuffer := newMonotonicBuffer(int(newBufferSize))
	a.buffers = append(a.buffers, newBuffer)

	ptr, ok := newBuffer.alloc(size, alignment)
	if !ok {
		// Cannot happen, the buffer was sized for this allocation.
		panic("arenastring: failed to allocate on newly created buffer")
	}

	if currentLen := a.len(); currentLen > a.peak {
		a.peak = currentLen
	}

	return ptr
}

// Own satisfies the Arena interface. The registered reference is held until
// the next Reset or Release.
func (a *monotonicArena) Own(x any) {
	a.owned = append(a.owned, x)
}

// Owned satisfies the Arena interface.
func (a *monotonicArena) Owned() int {
	return len(a.owned)
}

// Reset satisfies the Arena interface. Dropping the owned references here is
// the bulk free for everything registered via Own.
func (a *monotonicArena) Reset() {
	for _, s := range a.buffers {
		s.reset()
	}
	clear(a.owned)
	a.owned = a.owned[:0]
}

// Release satisfies the Arena interface.
func (a *monotonicArena) Release() {
	for _, s := range a.buffers {
		s.release()
	}
	a.owned = nil
}

func (a *monotonicArena) len() uintptr {
	var total uintptr
	for _, s := range a.buffers {
		total += s.offset
	}
	return total
}

// Len returns the total number of bytes currently allocated in the arena.
func (a *monotonicArena) Len() int {
	return int(a.len())
}

// Cap returns the total capacity (maximum bytes) that can be allocated in the arena.
func (a *monotonicArena) Cap() int {
	var total uintptr
	for _, s := range a.buffers {
		total += s.size
	}
	return int(total)
}

// Peak returns the peak number of bytes that have been allocated in the arena.
func (a *monotonicArena) Peak() int {
	return int(a.peak)
}
