package alloc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapAllocate(t *testing.T) {
	var h Heap

	buf := h.Allocate(1024)
	require.Len(t, buf, 1024)
	for _, b := range buf {
		require.Zero(t, b)
	}

	// Free must accept any previously returned block without panicking.
	h.Free(buf)
}

func TestHeapAllocateNegative(t *testing.T) {
	var h Heap
	require.Nil(t, h.Allocate(-1))
}

func TestPoolClassRounding(t *testing.T) {
	testCases := []struct {
		size         int
		expectedPool int
	}{
		{1, Size32},
		{32, Size32},
		{33, Size512},
		{512, Size512},
		{513, Size4K},
		{4096, Size4K},
		{4097, Size16K},
		{16384, Size16K},
		{16385, Size64K},
		{65536, Size64K},
		{65537, Size256K},
		{262144, Size256K},
		{262145, Size1M},
		{1048576, Size1M},
		{1048577, Size4M},
		{4194304, Size4M},
		{4194305, Size8M},
		{8388608, Size8M},
	}

	p := NewPool()
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("size%d", tc.size), func(t *testing.T) {
			buf := p.Allocate(tc.size)
			require.Len(t, buf, tc.size)
			require.Equal(t, tc.expectedPool, cap(buf))
			p.Free(buf)
		})
	}
}

func TestPoolOversized(t *testing.T) {
	p := NewPool()

	size := Size8M + 1024
	buf := p.Allocate(size)
	require.Len(t, buf, size)

	// Oversized blocks are not pooled; Free must still accept them.
	p.Free(buf)
}

func TestPoolNegative(t *testing.T) {
	p := NewPool()
	require.Nil(t, p.Allocate(-1))
}

func TestPoolFreeNil(t *testing.T) {
	p := NewPool()
	p.Free(nil)
}

func TestPoolForeignCapacity(t *testing.T) {
	p := NewPool()

	// cap 1500 matches no size class; the pool must leave it to the GC.
	buf := make([]byte, 1000, 1500)
	p.Free(buf)
}

func TestPoolReuse(t *testing.T) {
	p := NewPool()

	buf := p.Allocate(100)
	for i := range buf {
		buf[i] = byte(i)
	}
	p.Free(buf)

	buf2 := p.Allocate(100)
	require.Len(t, buf2, 100)
	require.Equal(t, Size512, cap(buf2))
	p.Free(buf2)
}

func TestCountingAccounting(t *testing.T) {
	c := NewCounting(Heap{})

	a := c.Allocate(64)
	b := c.Allocate(128)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.EqualValues(t, 2, c.Allocs())
	require.EqualValues(t, 192, c.InUse())
	require.EqualValues(t, 192, c.Total())

	c.Free(a)
	require.EqualValues(t, 1, c.Frees())
	require.EqualValues(t, 128, c.InUse())
	require.EqualValues(t, 192, c.Total())

	c.Free(b)
	require.EqualValues(t, 0, c.InUse())
}

func TestCountingLimit(t *testing.T) {
	c := NewCounting(nil)
	c.SetLimit(100)

	a := c.Allocate(64)
	require.NotNil(t, a)
	require.Nil(t, c.Allocate(64))
	require.EqualValues(t, 1, c.Allocs())

	c.Free(a)
	require.NotNil(t, c.Allocate(64))

	c.SetLimit(0)
	require.NotNil(t, c.Allocate(1 << 20))
}

func TestCountingFreeNil(t *testing.T) {
	c := NewCounting(nil)
	c.Free(nil)
	require.EqualValues(t, 0, c.Frees())
}

func BenchmarkPoolGet1K(b *testing.B) {
	p := NewPool()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := p.Allocate(1024)
		p.Free(buf)
	}
}

func BenchmarkPoolGet1M(b *testing.B) {
	p := NewPool()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := p.Allocate(1048576)
		p.Free(buf)
	}
}

func BenchmarkDirectAlloc1M(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := make([]byte, 1048576)
		_ = buf
	}
}
