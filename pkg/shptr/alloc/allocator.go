package alloc

// Allocator acquires and releases raw storage for shared handles.
//
// Allocate returns a block of at least size bytes, or nil when the
// request cannot be satisfied; it reports failure only through the nil
// result, never by panicking. Free releases a block previously returned
// by Allocate on the same Allocator; it must not fail, and a handle
// never passes it the same block twice.
//
// Blocks are untyped bytes the garbage collector does not scan, so
// values stored in them must not hold pointers.
type Allocator interface {
	Allocate(size int) []byte
	Free(buf []byte)
}

// Heap is the default Allocator, backed by the Go heap. Blocks it
// returns are zeroed; freed blocks are left to the garbage collector.
type Heap struct{}

// Allocate returns a zeroed block of size bytes, or nil for a negative
// size.
func (Heap) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	return make([]byte, size)
}

// Free is a no-op; the garbage collector reclaims the block once the
// last reference drops.
func (Heap) Free(buf []byte) {}

// Default is the allocator used when none is supplied.
var Default Allocator = Heap{}

var _ Allocator = Heap{}
