package arenastring

import (
	"sync"
	"weak"
)

// Pool provides a thread-safe pool of Arena instances for message batches.
// Messages built from pooled arenas get their string fields bulk-freed when
// the arena is returned.
//
// Pool items are stored as weak pointers, so the GC can collect them at any
// time. Acquire upgrades an item to a strong pointer while removing it from
// the pool; Release resets the arena and turns the item back into a weak
// pointer. The GC therefore manages the effective pool size based on memory
// pressure.
type Pool struct {
	pool  []weak.Pointer[PoolItem]
	sizes map[uint64]*poolItemSize
	mu    sync.Mutex
}

// poolItemSize tracks the memory required across recent arenas for one key,
// so future arenas for the same message type start with a fitting buffer.
type poolItemSize struct {
	count      int
	totalBytes int
}

// PoolItem wraps an Arena for use in the pool.
type PoolItem struct {
	Arena Arena
	Key   uint64
}

// NewArenaPool creates a new Pool instance.
func NewArenaPool() *Pool {
	return &Pool{
		sizes: make(map[uint64]*poolItemSize),
	}
}

// Acquire gets an arena from the pool or creates a new one if none are
// available. The key identifies the message type or use case, and is used to
// size new arenas from the recorded peak usage of earlier arenas with the
// same key.
func (p *Pool) Acquire(key uint64) *PoolItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.pool) > 0 {
		lastIdx := len(p.pool) - 1
		wp := p.pool[lastIdx]
		p.pool = p.pool[:lastIdx]

		if v := wp.Value(); v != nil {
			v.Key = key
			return v
		}
		// Weak pointer was collected, try the next item.
	}

	return &PoolItem{
		Arena: NewMonotonicArena(WithMinBufferSize(p.arenaSize(key))),
		Key:   key,
	}
}

// Release resets the item's arena, which bulk-frees every field value owned
// by it, and returns the item to the pool for reuse. The arena's peak usage
// is recorded to size future arenas for the same key.
func (p *Pool) Release(item *PoolItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release(item)
}

// ReleaseMany releases a batch of items under a single lock acquisition.
func (p *Pool) ReleaseMany(items []*PoolItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range items {
		p.release(item)
	}
}

func (p *Pool) release(item *PoolItem) {
	peak := item.Arena.Peak()
	item.Arena.Reset()

	if size, ok := p.sizes[item.Key]; ok {
		if size.count == 50 {
			size.count = 1
			size.totalBytes = size.totalBytes / 50
		}
		size.count++
		size.totalBytes += peak
	} else {
		p.sizes[item.Key] = &poolItemSize{
			count:      1,
			totalBytes: peak,
		}
	}

	item.Key = 0
	p.pool = append(p.pool, weak.Make(item))
}

// arenaSize returns the arena buffer size for a given key, averaged over the
// recorded peaks. Defaults to 1MB when no usage has been recorded.
func (p *Pool) arenaSize(key uint64) int {
	if size, ok := p.sizes[key]; ok {
		return size.totalBytes / size.count
	}
	return 1024 * 1024
}
