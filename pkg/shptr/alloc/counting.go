package alloc

import "sync/atomic"

// Counting wraps another Allocator and tracks allocation traffic. It is
// the tool for leak accounting in tests and for exercising failure
// paths: with a limit set, requests that would push live bytes past the
// limit fail with a nil block before reaching the inner allocator.
type Counting struct {
	inner Allocator

	limit  atomic.Int64 // 0 means unlimited
	allocs atomic.Int64
	frees  atomic.Int64
	inUse  atomic.Int64
	total  atomic.Int64
}

// NewCounting returns a Counting allocator delegating to inner.
// A nil inner delegates to Default.
func NewCounting(inner Allocator) *Counting {
	if inner == nil {
		inner = Default
	}
	return &Counting{inner: inner}
}

// SetLimit caps live bytes at n. Zero removes the cap.
func (c *Counting) SetLimit(n int64) {
	c.limit.Store(n)
}

func (c *Counting) Allocate(size int) []byte {
	if limit := c.limit.Load(); limit > 0 && c.inUse.Load()+int64(size) > limit {
		return nil
	}
	buf := c.inner.Allocate(size)
	if buf == nil {
		return nil
	}
	c.allocs.Add(1)
	c.inUse.Add(int64(size))
	c.total.Add(int64(size))
	return buf
}

func (c *Counting) Free(buf []byte) {
	if buf == nil {
		return
	}
	c.frees.Add(1)
	c.inUse.Add(-int64(len(buf)))
	c.inner.Free(buf)
}

// Allocs returns the number of successful allocations.
func (c *Counting) Allocs() int64 { return c.allocs.Load() }

// Frees returns the number of blocks freed.
func (c *Counting) Frees() int64 { return c.frees.Load() }

// InUse returns the bytes currently outstanding.
func (c *Counting) InUse() int64 { return c.inUse.Load() }

// Total returns the cumulative bytes ever allocated.
func (c *Counting) Total() int64 { return c.total.Load() }

var _ Allocator = (*Counting)(nil)
