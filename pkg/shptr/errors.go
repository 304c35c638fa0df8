package shptr

import "errors"

var (
	// Allocation errors
	ErrOutOfMemory = errors.New("allocator returned no storage")

	// Contract errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNilDereference  = errors.New("dereference of an invalid handle")
)
