package alloc

import "sync"

// Predefined pool size classes.
// The maximum class (8MB) covers large media payloads; requests above
// it are allocated directly and never pooled.
const (
	Size32   = 1 << 5  // 32 bytes
	Size512  = 1 << 9  // 512 bytes
	Size4K   = 1 << 12 // 4 KB
	Size16K  = 1 << 14 // 16 KB
	Size64K  = 1 << 16 // 64 KB
	Size256K = 1 << 18 // 256 KB
	Size1M   = 1 << 20 // 1 MB
	Size4M   = 1 << 22 // 4 MB
	Size8M   = 1 << 23 // 8 MB
)

var classes = [...]int{
	Size32, Size512, Size4K, Size16K, Size64K, Size256K, Size1M, Size4M, Size8M,
}

// Pool is an Allocator that recycles blocks through tiered sync.Pools,
// one per size class. A request is rounded up to the smallest class
// that fits and served from that tier, so frequently-allocated sizes
// avoid the heap. Recycled blocks keep whatever bytes the previous
// owner wrote; callers that need zeroed storage must clear them.
type Pool struct {
	tiers [len(classes)]sync.Pool
}

// NewPool returns a Pool with empty tiers.
func NewPool() *Pool {
	p := &Pool{}
	for i, size := range classes {
		size := size
		p.tiers[i].New = func() any { return make([]byte, size) }
	}
	return p
}

// Allocate returns a block of size bytes from the matching tier.
// Sizes above the largest class are allocated directly.
func (p *Pool) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	for i, class := range classes {
		if size <= class {
			return p.tiers[i].Get().([]byte)[:size]
		}
	}
	return make([]byte, size)
}

// Free returns a block to the tier matching its capacity. Blocks with a
// foreign or oversized capacity are left to the garbage collector.
func (p *Pool) Free(buf []byte) {
	if buf == nil {
		return
	}
	capacity := cap(buf)
	for i, class := range classes {
		if capacity == class {
			p.tiers[i].Put(buf[:capacity])
			return
		}
	}
}

var _ Allocator = (*Pool)(nil)
