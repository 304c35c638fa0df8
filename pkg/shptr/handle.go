// Package shptr provides Shared, a reference-counted owner of a
// contiguous buffer of T backed by a pluggable allocator.
package shptr

import (
	"fmt"
	"math"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/ptrkit/shptr/internal/debug"
	"github.com/ptrkit/shptr/pkg/shptr/alloc"
)

// Shared is a reference-counted handle to a buffer of T. Any number of
// handles may alias one buffer; all of them co-own a single out-of-band
// counter cell, and the buffer goes back to its Allocator exactly once,
// when the last handle releases.
//
// The counter cell is adjusted atomically, so distinct handles over one
// buffer may be cloned and released from concurrent goroutines. A
// single handle value is not safe for concurrent mutation, and the
// element data itself is never synchronized.
//
// A handle holding no buffer is invalid: its refcount reads 0 and
// element access panics with ErrNilDereference. Handles become invalid
// by default construction, by being moved from, or by Release.
type Shared[T any] struct {
	data  []T
	raw   []byte
	refs  *atomic.Int64
	alloc alloc.Allocator
}

// New returns an invalid handle. No allocation occurs.
func New[T any]() *Shared[T] {
	return &Shared[T]{}
}

// NewLen allocates a buffer of n elements from the default allocator.
// See NewLenIn.
func NewLen[T any](n int) (*Shared[T], error) {
	return NewLenIn[T](alloc.Default, n)
}

// NewLenIn allocates a buffer of n elements from a and returns the first
// handle owning it, with a refcount of 1. The buffer holds whatever
// bytes the allocator produced: zeroed elements under the default heap
// allocator, possibly recycled contents under a pool.
//
// The heap allocator stores elements in an ordinary Go slice and
// accepts any element type. Every other allocator hands back raw bytes
// the garbage collector does not scan, so element types holding
// pointers (strings, slices, maps, interfaces, pointers and aggregates
// of them) are rejected with ErrInvalidArgument.
//
// n == 0 performs no allocation and yields an invalid handle, the same
// state New returns. A negative n fails with ErrInvalidArgument; an
// allocator that returns no storage, or an n whose byte size does not
// fit in int, fails with ErrOutOfMemory. No failure leaves an
// allocation outstanding. A nil allocator falls back to alloc.Default.
func NewLenIn[T any](a alloc.Allocator, n int) (*Shared[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("shptr: length %d: %w", n, ErrInvalidArgument)
	}
	if n == 0 {
		return New[T](), nil
	}
	if a == nil {
		a = alloc.Default
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize > 0 && n > math.MaxInt/elemSize {
		return nil, fmt.Errorf("shptr: %d elements of %d bytes: %w", n, elemSize, ErrOutOfMemory)
	}
	refs := &atomic.Int64{}
	refs.Store(1)
	if _, ok := a.(alloc.Heap); ok {
		// GC-visible storage, safe for any element type.
		return &Shared[T]{data: make([]T, n), refs: refs, alloc: a}, nil
	}
	if t := reflect.TypeOf((*T)(nil)).Elem(); !pointerFree(t) {
		return nil, fmt.Errorf("shptr: element type %v holds pointers the collector cannot see in allocator storage: %w", t, ErrInvalidArgument)
	}
	raw := a.Allocate(n * elemSize)
	if raw == nil {
		return nil, fmt.Errorf("shptr: allocating %d bytes: %w", n*elemSize, ErrOutOfMemory)
	}
	data := unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), n)
	return &Shared[T]{data: data, raw: raw, refs: refs, alloc: a}, nil
}

// pointerFree reports whether values of t contain no pointers, which is
// required before storing them in unscanned allocator bytes.
func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// NewFrom deep-copies src into a new buffer from the default allocator.
// See NewFromIn.
func NewFrom[T any](src []T) (*Shared[T], error) {
	return NewFromIn(alloc.Default, src)
}

// NewFromIn allocates a buffer of len(src) elements from a and
// deep-copies src into it. A nil src is a contract violation reported
// as ErrInvalidArgument with no allocation outstanding afterward. A
// non-nil empty src behaves like NewLenIn with n == 0.
func NewFromIn[T any](a alloc.Allocator, src []T) (*Shared[T], error) {
	if src == nil {
		return nil, fmt.Errorf("shptr: nil source buffer: %w", ErrInvalidArgument)
	}
	h, err := NewLenIn[T](a, len(src))
	if err != nil {
		return nil, err
	}
	copy(h.data, src)
	return h, nil
}

// Clone returns a new handle aliasing the same buffer and increments
// the shared count. Cloning an invalid handle yields another invalid
// handle.
func (h *Shared[T]) Clone() *Shared[T] {
	if h.refs == nil {
		return &Shared[T]{}
	}
	h.refs.Add(1)
	return &Shared[T]{data: h.data, raw: h.raw, refs: h.refs, alloc: h.alloc}
}

// CopyFrom re-points h at other's buffer. When both already alias the
// same pair (including h == other) nothing happens and the count is
// untouched. Otherwise h's current ownership is released first, then h
// adopts other's buffer and increments its count.
func (h *Shared[T]) CopyFrom(other *Shared[T]) {
	if h == other || h.refs == other.refs {
		return
	}
	h.Release()
	if other.refs == nil {
		return
	}
	other.refs.Add(1)
	h.data, h.raw, h.refs, h.alloc = other.data, other.raw, other.refs, other.alloc
}

// MoveFrom transfers other's ownership into h without touching the
// shared count and leaves other invalid, so other's eventual Release is
// a no-op. When both already alias the same pair (including h == other)
// nothing happens.
func (h *Shared[T]) MoveFrom(other *Shared[T]) {
	if h == other || (h.refs != nil && h.refs == other.refs) {
		return
	}
	h.Release()
	h.data, h.raw, h.refs, h.alloc = other.data, other.raw, other.refs, other.alloc
	other.data, other.raw, other.refs, other.alloc = nil, nil, nil, nil
}

// Release drops h's reference. When the count reaches zero the buffer
// goes back to its Allocator and the counter cell is dropped with it.
// The handle is left invalid either way; releasing an invalid handle is
// a no-op.
func (h *Shared[T]) Release() {
	if h.refs == nil {
		return
	}
	n := h.refs.Add(-1)
	debug.Assert(n >= 0, "shptr: refcount underflow (%d)", n)
	if n == 0 {
		h.alloc.Free(h.raw)
	}
	h.data, h.raw, h.refs, h.alloc = nil, nil, nil, nil
}

// Data returns the underlying buffer, or nil for an invalid handle.
// It is an escape hatch for foreign-interface interop: the caller must
// not free the memory and must not keep the slice past the last
// Release.
func (h *Shared[T]) Data() []T {
	return h.data
}

// Deref returns a pointer to the first element. It panics with
// ErrNilDereference when the handle is invalid.
func (h *Shared[T]) Deref() *T {
	if h.refs == nil {
		panic(ErrNilDereference)
	}
	return &h.data[0]
}

// At returns a pointer to the i-th element. It panics with
// ErrNilDereference when the handle is invalid; an out-of-range i
// panics like any slice index.
func (h *Shared[T]) At(i int) *T {
	if h.refs == nil {
		panic(ErrNilDereference)
	}
	return &h.data[i]
}

// Len returns the element count, 0 for an invalid handle.
func (h *Shared[T]) Len() int {
	return len(h.data)
}

// RefCount returns the current shared count, 0 for an invalid handle.
func (h *Shared[T]) RefCount() int64 {
	if h.refs == nil {
		return 0
	}
	return h.refs.Load()
}

// Valid reports whether h currently aliases a live buffer.
func (h *Shared[T]) Valid() bool {
	return h.refs != nil
}

// Same reports identity: true iff both handles alias the same buffer
// and counter cell. It never compares element contents.
func (h *Shared[T]) Same(other *Shared[T]) bool {
	return h.refs == other.refs && unsafe.SliceData(h.data) == unsafe.SliceData(other.data)
}

// Is reports whether p equals h's buffer start address. An invalid
// handle's start address is nil.
func (h *Shared[T]) Is(p *T) bool {
	return p == unsafe.SliceData(h.data)
}

// Less orders handles by buffer start address. The order says nothing
// about contents; it exists for identity-keyed ordered containers.
func (h *Shared[T]) Less(other *Shared[T]) bool {
	return h.addr() < other.addr()
}

// Greater is the inverse ordering of Less.
func (h *Shared[T]) Greater(other *Shared[T]) bool {
	return h.addr() > other.addr()
}

func (h *Shared[T]) addr() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(h.data)))
}
